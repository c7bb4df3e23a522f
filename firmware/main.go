//go:build tinygo

//go:generate tinygo flash -target=grandcentral-m4

package main

import (
	"context"
	"device/arm"
	"machine"
	"time"

	"github.com/itohio/kvmswitch/pkg/button"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/kvm"
	"github.com/itohio/kvmswitch/pkg/relay"
)

func halt(msg string, err error) {
	for {
		println(msg, err.Error())
		time.Sleep(time.Second)
	}
}

func main() {
	cfg := config.Default()

	lower, err := newUART(uartLower, PIN_LOWER_TX, PIN_LOWER_RX)
	if err != nil {
		halt("lower uart:", err)
	}
	upperA, err := newUART(uartUpperA, PIN_UPPER_A_TX, PIN_UPPER_A_RX)
	if err != nil {
		halt("upper A uart:", err)
	}
	upperB, err := newUART(uartUpperB, PIN_UPPER_B_TX, PIN_UPPER_B_RX)
	if err != nil {
		halt("upper B uart:", err)
	}

	sys := kvm.NewSystem(cfg, relay.Channels{
		Lower:  lower,
		UpperA: upperA,
		UpperB: upperB,
	}, kvm.Options{
		Emitter:   newPixel(PIN_PIXEL),
		Restarter: kvm.RestartFunc(arm.SystemReset),
	})

	buttons := []struct {
		pin machine.Pin
		id  button.ID
	}{
		{PIN_BTN_SWITCH, button.Switch},
		{PIN_BTN_MOUSE, button.MouseToggle},
		{PIN_BTN_LED, button.LedToggle},
	}
	for _, b := range buttons {
		id := b.id
		b.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		err := b.pin.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
			sys.Monitor.Edge(id, p.Get(), time.Now())
		})
		if err != nil {
			halt("button interrupt:", err)
		}
	}

	println("kvm switch ready, target", sys.State.Target().String())
	sys.Run(context.Background())
}
