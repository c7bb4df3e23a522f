//go:build tinygo

package main

import "machine"

const (
	UART_BAUD_RATE = 115200

	// Lower device (USB HID bridge) on Serial1.
	PIN_LOWER_TX = machine.D18
	PIN_LOWER_RX = machine.D19

	// Target A on Serial2, target B on Serial3.
	PIN_UPPER_A_TX = machine.D16
	PIN_UPPER_A_RX = machine.D17
	PIN_UPPER_B_TX = machine.D14
	PIN_UPPER_B_RX = machine.D15

	// Active-low buttons with internal pull-ups.
	PIN_BTN_SWITCH = machine.D2
	PIN_BTN_MOUSE  = machine.D3
	PIN_BTN_LED    = machine.D4

	PIN_PIXEL = machine.D6
)

var (
	uartLower  = machine.UART1
	uartUpperA = machine.UART2
	uartUpperB = machine.UART3
)
