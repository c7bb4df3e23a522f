// Package kvm ties the switch together: the controller that changes the
// active target, the dispatcher serializing every request, and the System
// running all workers.
package kvm

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/itohio/kvmswitch/pkg/clock"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/events"
	"github.com/itohio/kvmswitch/pkg/led"
	"github.com/itohio/kvmswitch/pkg/relay"
	"github.com/itohio/kvmswitch/pkg/state"
)

// Restarter restarts the device. On hardware Restart does not return.
type Restarter interface {
	Restart()
}

// RestartFunc adapts a function to Restarter.
type RestartFunc func()

// Restart implements Restarter.
func (f RestartFunc) Restart() { f() }

// Effects is the part of the LED engine the controller drives.
// *led.Engine implements it.
type Effects interface {
	Cancel()
	Blackout()
	Trigger(k led.Kind)
	Output() *led.Output
}

// Notifier receives a notification for every accepted or rejected request.
// *events.Bus implements it.
type Notifier interface {
	Publish(ev events.Event)
}

// Controller performs the switch and toggle operations. It is not safe for
// concurrent use; the Dispatcher is its only caller.
type Controller struct {
	state     *state.State
	ch        relay.Channels
	fx        Effects
	restarter Restarter
	notifier  Notifier
	clk       clock.Clock

	settle time.Duration
	cue    time.Duration

	accepted atomic.Uint64
	rejected atomic.Uint64
}

// ResetCue is the color shown before a restart.
var ResetCue = led.RGB{R: 255}

// NewController creates a Controller. restarter and notifier may be nil.
func NewController(st *state.State, ch relay.Channels, fx Effects, restarter Restarter, notifier Notifier, cfg *config.Config, clk clock.Clock) *Controller {
	if cfg == nil {
		cfg = config.Default()
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Controller{
		state:     st,
		ch:        ch,
		fx:        fx,
		restarter: restarter,
		notifier:  notifier,
		clk:       clk,
		settle:    cfg.Switch.Settle,
		cue:       cfg.Buttons.ResetCue,
	}
}

// Switch moves the relayed stream to the other target. It reports false
// when the lockout rejected the request; nothing changes in that case.
func (c *Controller) Switch() bool {
	now := c.clk.Now()
	if !c.state.Lockout.Admit(now) {
		c.reject("switch", now)
		return false
	}

	c.fx.Cancel()
	c.fx.Blackout()
	c.clk.Sleep(c.settle)

	target := c.state.Flip()

	c.flush("lower", c.ch.Lower)
	c.flush("upper "+target.String(), c.ch.Upper(target))

	c.fx.Trigger(led.Burst)

	c.accepted.Add(1)
	log.Printf("Switched to target %s", target)
	c.publish(events.SwitchedEvent{Target: target, At: now})
	return true
}

// ToggleMouseMiddle toggles interception of middle-click frames. It shares
// the switch lockout.
func (c *Controller) ToggleMouseMiddle() bool {
	now := c.clk.Now()
	if !c.state.Lockout.Admit(now) {
		c.reject("mouse-middle", now)
		return false
	}

	enabled := c.state.ToggleMouseMiddle()
	c.accepted.Add(1)

	log.Printf("Mouse middle interception enabled: %v", enabled)
	c.publish(events.FeatureToggledEvent{Feature: events.FeatureMouseMiddle, Enabled: enabled, At: now})
	return true
}

// ToggleLedFeature toggles the status LED. Turning it off cancels the
// running effect and blacks out the pixel; turning it on resumes breathing
// in the current color without a burst. It shares the switch lockout.
func (c *Controller) ToggleLedFeature() bool {
	now := c.clk.Now()
	if !c.state.Lockout.Admit(now) {
		c.reject("led", now)
		return false
	}

	enabled := !c.state.LedEnabled()
	if enabled {
		c.state.SetLedEnabled(true)
		c.fx.Trigger(led.Resume)
	} else {
		c.state.SetLedEnabled(false)
		c.fx.Cancel()
		c.fx.Blackout()
		c.clk.Sleep(c.settle)
	}

	c.accepted.Add(1)
	log.Printf("LED feature enabled: %v", enabled)
	c.publish(events.FeatureToggledEvent{Feature: events.FeatureLed, Enabled: enabled, At: now})
	return true
}

// Restart shows the red cue, when the LED feature allows it, and restarts
// the device. It is not gated by the lockout.
func (c *Controller) Restart() {
	now := c.clk.Now()
	log.Printf("Restarting")
	c.publish(events.RestartingEvent{At: now})

	c.fx.Cancel()
	if c.state.LedEnabled() {
		c.fx.Output().Set(ResetCue)
		c.clk.Sleep(c.cue)
	}
	c.fx.Blackout()

	if c.restarter != nil {
		c.restarter.Restart()
	}
}

// Accepted returns the number of requests the lockout admitted.
func (c *Controller) Accepted() uint64 { return c.accepted.Load() }

// Rejected returns the number of requests the lockout refused.
func (c *Controller) Rejected() uint64 { return c.rejected.Load() }

func (c *Controller) flush(name string, ch relay.Channel) {
	if ch == nil {
		return
	}
	if err := ch.Flush(); err != nil {
		log.Printf("Error flushing %s channel: %v", name, err)
	}
}

func (c *Controller) reject(action string, now time.Time) {
	c.rejected.Add(1)
	c.publish(events.RejectedEvent{Action: action, At: now})
}

func (c *Controller) publish(ev events.Event) {
	if c.notifier != nil {
		c.notifier.Publish(ev)
	}
}
