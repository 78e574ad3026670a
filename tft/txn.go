// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import (
	"github.com/GermanBionicSystems/tftlcd/parbus"
)

// txn is a wrapper for error management over a bus.
//
// Once an operation fails every following one is skipped. The bus is always
// released by end.
type txn struct {
	b   parbus.Bus
	err error
}

func (t *txn) selectChip() {
	if t.err != nil {
		return
	}
	t.err = t.b.Select()
}

func (t *txn) writeCommand(c uint16) {
	if t.err != nil {
		return
	}
	t.err = t.b.WriteCommand(c)
}

func (t *txn) write8(v byte) {
	if t.err != nil {
		return
	}
	t.err = t.b.Write8(v)
}

func (t *txn) write16(v uint16) {
	if t.err != nil {
		return
	}
	t.err = t.b.Write16(v)
}

func (t *txn) fill16(v uint16, n int) {
	if t.err != nil {
		return
	}
	if f, ok := t.b.(parbus.Filler); ok {
		t.err = f.Fill16(v, n)
		return
	}
	for i := 0; i < n && t.err == nil; i++ {
		t.err = t.b.Write16(v)
	}
}

func (t *txn) read8() byte {
	if t.err != nil {
		return 0
	}
	v, err := t.b.Read8()
	t.err = err
	return v
}

func (t *txn) read16() uint16 {
	if t.err != nil {
		return 0
	}
	v, err := t.b.Read16()
	t.err = err
	return v
}

func (t *txn) input() {
	if t.err != nil {
		return
	}
	t.err = t.b.SetDirection(parbus.Input)
}

// end releases chip select and returns the bus to output, even after an
// error.
func (t *txn) end() {
	err := t.b.Deselect()
	if err2 := t.b.SetDirection(parbus.Output); err == nil {
		err = err2
	}
	if t.err == nil {
		t.err = err
	}
}

// writeCmdData writes one 16 bit value to a register.
func (t *txn) writeCmdData(c, v uint16) {
	t.selectChip()
	t.writeCommand(c)
	t.write16(v)
	t.deselect()
}

// writeCmdParams writes a command followed by 8 bit parameters.
func (t *txn) writeCmdParams(c uint16, params ...byte) {
	t.selectChip()
	t.writeCommand(c)
	for _, p := range params {
		t.write8(p)
	}
	t.deselect()
}

func (t *txn) deselect() {
	err := t.b.Deselect()
	if t.err == nil {
		t.err = err
	}
}

// read16bits reads one 16 bit value. On a 16 bit bus a value that fits in a
// byte is a byte wide controller, and a second strobe returns the low byte.
func (t *txn) read16bits() uint16 {
	if t.b.Width() == 16 {
		v := t.read16()
		if v > 0xFF {
			return v
		}
		return v<<8 | uint16(t.read8())
	}
	hi := t.read8()
	lo := t.read8()
	return uint16(hi)<<8 | uint16(lo)
}

// readReg reads reg and returns the 16 bit value at position index.
func (t *txn) readReg(reg uint16, index int) uint16 {
	t.selectChip()
	t.writeCommand(reg)
	t.input()
	var v uint16
	for i := 0; i <= index; i++ {
		v = t.read16bits()
	}
	t.end()
	return v
}

func (t *txn) readReg32(reg uint16) uint32 {
	h := t.readReg(reg, 0)
	l := t.readReg(reg, 1)
	return uint32(h)<<16 | uint32(l)
}

func (t *txn) readReg40(reg uint16) uint32 {
	h := t.readReg(reg, 0)
	m := t.readReg(reg, 1)
	l := t.readReg(reg, 2)
	return uint32(h)<<24 | uint32(m)<<8 | uint32(l)>>8
}
