// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package parbus implements the 8 and 16 bit strobed parallel bus used by
// TFT LCD shields.
//
// The bus has a chip select line (CS), a register select line (RS, also
// called C/D), a write strobe (WR), a read strobe (RD) and a reset line (RST).
// Commands are written with RS low, parameters and pixels with RS high. Each
// transfer latches the data lines on the rising edge of WR, or samples them
// while RD is low.
//
// There is no acknowledge on this bus. A transaction that is interrupted
// leaves the controller waiting for more data, so every user must return the
// bus to its idle state: CS high, RD and WR high, data lines driven.
package parbus

import (
	"periph.io/x/conn/v3"
)

// Direction is the direction of the data lines.
type Direction bool

const (
	// Output drives the data lines from the host.
	Output Direction = false
	// Input lets the controller drive the data lines.
	Input Direction = true
)

func (d Direction) String() string {
	if d == Input {
		return "Input"
	}
	return "Output"
}

// Bus is a parallel bus to a display controller.
//
// Values wider than the bus are transferred most significant byte first.
type Bus interface {
	conn.Resource

	// Width returns the number of data lines, either 8 or 16.
	Width() int
	// Select asserts chip select.
	Select() error
	// Deselect releases chip select.
	Deselect() error
	// WriteCommand writes c with RS low then returns RS high.
	WriteCommand(c uint16) error
	// WriteData writes a 16 bit register value with RS high.
	WriteData(d uint16) error
	// Write8 writes one strobe of 8 bits.
	Write8(b byte) error
	// Write16 writes 16 bits, in one strobe on a 16 bit bus and two on an 8
	// bit bus.
	Write16(w uint16) error
	// Read8 reads one strobe and returns the low 8 bits.
	Read8() (byte, error)
	// Read16 reads 16 bits, in one strobe on a 16 bit bus and two on an 8 bit
	// bus.
	Read16() (uint16, error)
	// SetDirection switches the data lines between Output and Input.
	SetDirection(d Direction) error
	// Reset pulses the reset line and waits for the controller to settle.
	Reset() error
}

// Filler is implemented by buses that can repeat the same 16 bit value
// faster than individual Write16 calls, by only toggling WR.
type Filler interface {
	Fill16(w uint16, n int) error
}
