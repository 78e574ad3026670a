// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import (
	"fmt"
	"time"
)

// Initialization table formats.
//
// A MIPI table is a sequence of (cmd, len, params[len]) entries. A cmd of
// Delay8 waits len milliseconds instead.
//
// A legacy table is a sequence of (reg, value) pairs. A reg of Delay16 waits
// value milliseconds instead.
const (
	Delay8  = 0x7F
	Delay16 = 0xFFFF
)

// RunInitTable sends a MIPI initialization table.
func (d *Dev) RunInitTable(table []byte) error {
	for i := 0; i < len(table); {
		if i+2 > len(table) {
			return fmt.Errorf("tft: init table truncated at offset %d", i)
		}
		cmd, n := table[i], int(table[i+1])
		i += 2
		if cmd == Delay8 {
			sleep(time.Duration(n) * time.Millisecond)
			continue
		}
		if i+n > len(table) {
			return fmt.Errorf("tft: init table entry 0x%02X needs %d parameters, %d left", cmd, n, len(table)-i)
		}
		if err := d.PushCommand(uint16(cmd), table[i:i+n]...); err != nil {
			return err
		}
		i += n
	}
	return nil
}

// RunInitRegs sends a legacy initialization table.
func (d *Dev) RunInitRegs(table []uint16) error {
	if len(table)%2 != 0 {
		return fmt.Errorf("tft: init table has an odd length %d", len(table))
	}
	for i := 0; i < len(table); i += 2 {
		if table[i] == Delay16 {
			sleep(time.Duration(table[i+1]) * time.Millisecond)
			continue
		}
		if err := d.WriteRegister(table[i], table[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) runInit() error {
	if !d.info.Caps.MIPIDCS {
		return d.RunInitRegs(d.info.InitRegs)
	}
	for _, table := range [][]byte{mipiResetOff, d.info.Init, mipiWakeOn} {
		if err := d.RunInitTable(table); err != nil {
			return err
		}
	}
	return nil
}

var mipiResetOff = []byte{
	0x01, 0, // soft reset
	Delay8, 150,
	0x28, 0, // display off
	0x3A, 1, 0x55, // 16 bits per pixel, read and write
}

var mipiWakeOn = []byte{
	0x11, 0, // sleep out
	Delay8, 150,
	0x29, 0, // display on
}

var ili9341Init = []byte{
	0xF6, 3, 0x01, 0x01, 0x00, // interface control, EXTC=1
	0xCF, 3, 0x00, 0x81, 0x30, // power control B
	0xED, 4, 0x64, 0x03, 0x12, 0x81, // power on sequence
	0xE8, 3, 0x85, 0x10, 0x78, // driver timing A
	0xCB, 5, 0x39, 0x2C, 0x00, 0x34, 0x02, // power control A
	0xF7, 1, 0x20, // pump ratio
	0xEA, 2, 0x00, 0x00, // driver timing B
	0xB0, 1, 0x00, // RGB signal
	0xB1, 2, 0x00, 0x1B, // frame control
	0xB4, 1, 0x00, // inversion control
	0xC0, 1, 0x21, // power control 1
	0xC1, 1, 0x11, // power control 2
	0xC5, 2, 0x3F, 0x3C, // VCOM 1
	0xC7, 1, 0xB5, // VCOM 2
	0x36, 1, 0x48, // memory access
	0xF2, 1, 0x00, // enable 3G
	0x26, 1, 0x01, // gamma set
	0xE0, 15, 0x0F, 0x26, 0x24, 0x0B, 0x0E, 0x09, 0x54, 0xA8, 0x46, 0x0C, 0x17, 0x09, 0x0F, 0x07, 0x00,
	0xE1, 15, 0x00, 0x19, 0x1B, 0x04, 0x10, 0x07, 0x2A, 0x47, 0x39, 0x03, 0x06, 0x06, 0x30, 0x38, 0x0F,
}

var ili9486Init = []byte{
	0xC0, 2, 0x0D, 0x0D, // power control 1
	0xC1, 2, 0x43, 0x00, // power control 2
	0xC2, 1, 0x00, // power control 3
	0xC5, 4, 0x00, 0x48, 0x00, 0x48, // VCOM control 1
	0xB4, 1, 0x00, // inversion control
	0xB6, 3, 0x02, 0x02, 0x3B, // display function control
}

var st7789Init = []byte{
	0xB2, 5, 0x0C, 0x0C, 0x00, 0x33, 0x33, // porch control
	0xB7, 1, 0x35, // gate control
	0xBB, 1, 0x2B, // VCOM
	0xC0, 1, 0x04, // LCM control
	0xC2, 2, 0x01, 0xFF, // VDV and VRH enable
	0xC3, 1, 0x11, // VRH
	0xC4, 1, 0x20, // VDV
	0xC6, 1, 0x0F, // frame rate
	0xD0, 2, 0xA4, 0xA1, // power control 1
}

var hx8357dInit = []byte{
	0xB9, 3, 0xFF, 0x83, 0x57, // enable extended commands
	Delay8, 150,
	0xB3, 4, 0x00, 0x00, 0x06, 0x06, // RGB interface
	0xB6, 1, 0x25, // VCOM
	0xB0, 1, 0x68, // oscillator
	0xCC, 1, 0x05, // panel
	0xB1, 6, 0x00, 0x15, 0x1C, 0x1C, 0x83, 0xAA, // power control
	0xC0, 6, 0x50, 0x50, 0x01, 0x3C, 0x1E, 0x08, // source timing
	0xB4, 7, 0x02, 0x40, 0x00, 0x2A, 0x2A, 0x0D, 0x78, // display cycle
}

var ili9325Init = []uint16{
	0x00E5, 0x78F0,
	0x0001, 0x0100, // driver output
	0x0002, 0x0200, // line inversion
	0x0003, 0x1030, // entry mode
	0x0004, 0x0000,
	0x0008, 0x0207, // porch
	0x0009, 0x0000,
	0x000A, 0x0000,
	0x000C, 0x0000,
	0x000D, 0x0000,
	0x000F, 0x0000,
	0x0010, 0x0000, // power control 1
	0x0011, 0x0007,
	0x0012, 0x0000,
	0x0013, 0x0000,
	0x0007, 0x0001,
	Delay16, 200,
	0x0010, 0x1690,
	0x0011, 0x0227,
	Delay16, 50,
	0x0012, 0x000D,
	Delay16, 50,
	0x0013, 0x1200,
	0x0029, 0x000A,
	0x002B, 0x000D,
	Delay16, 50,
	0x0020, 0x0000,
	0x0021, 0x0000,
	0x0050, 0x0000, // window
	0x0051, 0x00EF,
	0x0052, 0x0000,
	0x0053, 0x013F,
	0x0060, 0xA700, // gate scan
	0x0061, 0x0001,
	0x006A, 0x0000,
	0x0090, 0x0010, // panel interface
	0x0092, 0x0000,
	0x0007, 0x0133, // display on
}
