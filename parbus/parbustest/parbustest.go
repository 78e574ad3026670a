// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package parbustest is meant to be used to test drivers over a fake
// parallel bus.
package parbustest

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/tftlcd/parbus"
)

// Kind is the kind of a recorded bus operation.
type Kind uint8

// Recorded operations.
const (
	Select Kind = iota
	Deselect
	Command
	Data16
	Data8
	Read8
	Read16
	DirIn
	DirOut
	Reset
)

var kindNames = [...]string{"Select", "Deselect", "Command", "Data16", "Data8", "Read8", "Read16", "DirIn", "DirOut", "Reset"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Op is one recorded bus operation. V is the value written or read.
type Op struct {
	Kind Kind
	V    uint16
}

func (o Op) String() string {
	return fmt.Sprintf("%s(%#x)", o.Kind, o.V)
}

// Record implements parbus.Bus and records every operation.
//
// Reads return zero.
type Record struct {
	sync.Mutex
	// W is the bus width; 0 means 8.
	W   int
	Ops []Op

	selected bool
	dir      parbus.Direction
}

func (r *Record) String() string {
	return "record"
}

// Halt implements conn.Resource.
func (r *Record) Halt() error {
	return nil
}

// Width implements parbus.Bus.
func (r *Record) Width() int {
	if r.W == 0 {
		return 8
	}
	return r.W
}

// Selected reports if chip select is currently asserted.
func (r *Record) Selected() bool {
	r.Lock()
	defer r.Unlock()
	return r.selected
}

// Direction returns the current direction of the data lines.
func (r *Record) Direction() parbus.Direction {
	r.Lock()
	defer r.Unlock()
	return r.dir
}

// Select implements parbus.Bus.
func (r *Record) Select() error {
	r.Lock()
	defer r.Unlock()
	r.selected = true
	r.Ops = append(r.Ops, Op{Kind: Select})
	return nil
}

// Deselect implements parbus.Bus.
func (r *Record) Deselect() error {
	r.Lock()
	defer r.Unlock()
	r.selected = false
	r.Ops = append(r.Ops, Op{Kind: Deselect})
	return nil
}

// WriteCommand implements parbus.Bus.
func (r *Record) WriteCommand(c uint16) error {
	return r.add(Command, c)
}

// WriteData implements parbus.Bus.
func (r *Record) WriteData(d uint16) error {
	return r.add(Data16, d)
}

// Write8 implements parbus.Bus.
func (r *Record) Write8(b byte) error {
	return r.add(Data8, uint16(b))
}

// Write16 implements parbus.Bus.
func (r *Record) Write16(w uint16) error {
	return r.add(Data16, w)
}

// Read8 implements parbus.Bus.
func (r *Record) Read8() (byte, error) {
	return 0, r.add(Read8, 0)
}

// Read16 implements parbus.Bus.
func (r *Record) Read16() (uint16, error) {
	return 0, r.add(Read16, 0)
}

// SetDirection implements parbus.Bus.
func (r *Record) SetDirection(d parbus.Direction) error {
	r.Lock()
	defer r.Unlock()
	r.dir = d
	if d == parbus.Input {
		r.Ops = append(r.Ops, Op{Kind: DirIn})
	} else {
		r.Ops = append(r.Ops, Op{Kind: DirOut})
	}
	return nil
}

// Reset implements parbus.Bus.
func (r *Record) Reset() error {
	r.Lock()
	defer r.Unlock()
	r.selected = false
	r.dir = parbus.Output
	r.Ops = append(r.Ops, Op{Kind: Reset})
	return nil
}

// Commands returns the recorded commands in order.
func (r *Record) Commands() []uint16 {
	r.Lock()
	defer r.Unlock()
	var out []uint16
	for _, op := range r.Ops {
		if op.Kind == Command {
			out = append(out, op.V)
		}
	}
	return out
}

func (r *Record) add(k Kind, v uint16) error {
	r.Lock()
	defer r.Unlock()
	r.Ops = append(r.Ops, Op{Kind: k, V: v})
	return nil
}

// Playback implements parbus.Bus. It records every operation like Record and
// answers reads from scripted register contents.
//
// After each command the read position restarts at the beginning of the
// register's script. On an 8 bit bus every strobe returns the low byte of the
// next scripted value; on a 16 bit bus it returns the whole value.
type Playback struct {
	Record
	// Regs maps a command to the values returned by successive read strobes.
	Regs map[uint16][]uint16
	// Echo makes unscripted reads return the last value driven on the bus,
	// which is what a write-only bus does. Otherwise they return 0.
	Echo bool

	cmd  uint16
	pos  int
	last uint16
}

func (p *Playback) String() string {
	return "playback"
}

// WriteCommand implements parbus.Bus.
func (p *Playback) WriteCommand(c uint16) error {
	p.Lock()
	p.cmd = c
	p.pos = 0
	if p.Width() == 8 {
		p.last = c & 0xFF
	} else {
		p.last = c
	}
	p.Unlock()
	return p.Record.WriteCommand(c)
}

// WriteData implements parbus.Bus.
func (p *Playback) WriteData(d uint16) error {
	p.drive(d)
	return p.Record.WriteData(d)
}

// Write8 implements parbus.Bus.
func (p *Playback) Write8(b byte) error {
	p.drive(uint16(b))
	return p.Record.Write8(b)
}

// Write16 implements parbus.Bus.
func (p *Playback) Write16(w uint16) error {
	p.drive(w)
	return p.Record.Write16(w)
}

// Read8 implements parbus.Bus.
func (p *Playback) Read8() (byte, error) {
	v := byte(p.strobe())
	return v, p.add(Read8, uint16(v))
}

// Read16 implements parbus.Bus.
func (p *Playback) Read16() (uint16, error) {
	var v uint16
	if p.Width() == 16 {
		v = p.strobe()
	} else {
		v = (p.strobe()&0xFF)<<8 | p.strobe()&0xFF
	}
	return v, p.add(Read16, v)
}

func (p *Playback) drive(v uint16) {
	p.Lock()
	defer p.Unlock()
	if p.Width() == 8 {
		v &= 0xFF
	}
	p.last = v
}

func (p *Playback) strobe() uint16 {
	p.Lock()
	defer p.Unlock()
	script, ok := p.Regs[p.cmd]
	if ok && p.pos < len(script) {
		v := script[p.pos]
		p.pos++
		if p.Width() == 8 {
			v &= 0xFF
		}
		return v
	}
	p.pos++
	if p.Echo {
		return p.last
	}
	return 0
}

var _ parbus.Bus = &Record{}
var _ parbus.Bus = &Playback{}
