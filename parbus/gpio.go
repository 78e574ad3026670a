// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package parbus

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Opts describes the wiring of a GPIO parallel bus.
type Opts struct {
	// Data are the D0..D7 or D0..D15 lines, D0 at offset 0.
	Data gpio.Group
	// CS is optional; use nil when chip select is tied low.
	CS gpio.PinOut
	// RS selects command (low) or data (high). Required.
	RS gpio.PinOut
	// WR is the write strobe. Required.
	WR gpio.PinOut
	// RD is the read strobe. When nil, the bus is write-only and reads return
	// whatever the host last drove on the data lines.
	RD gpio.PinOut
	// RST is optional; use nil when reset is tied to the host reset.
	RST gpio.PinOut

	// ResetIdle is how long the lines are left idle before the reset pulse.
	ResetIdle time.Duration
	// ResetPulse is how long RST is held low.
	ResetPulse time.Duration
	// ResetSettle is how long to wait after RST is released.
	ResetSettle time.Duration
	// ReadSettle is how long to wait after turning the data lines around.
	ReadSettle time.Duration
}

// DefaultOpts are the timings that work with every controller seen so far.
var DefaultOpts = Opts{
	ResetIdle:   50 * time.Millisecond,
	ResetPulse:  100 * time.Millisecond,
	ResetSettle: 100 * time.Millisecond,
	ReadSettle:  time.Microsecond,
}

// GPIO is a parallel bus bit-banged over GPIO pins.
type GPIO struct {
	data  gpio.Group
	cs    gpio.PinOut
	rs    gpio.PinOut
	wr    gpio.PinOut
	rd    gpio.PinOut
	rst   gpio.PinOut
	width int
	mask  gpio.GPIOValue
	opts  Opts

	dir  Direction
	last gpio.GPIOValue // last value driven on the data lines
}

// NewGPIO returns a bus driving the pins in opts.
//
// The data group must have 8 or 16 pins. Zero timings are replaced with the
// ones from DefaultOpts.
func NewGPIO(opts *Opts) (*GPIO, error) {
	if opts == nil || opts.Data == nil {
		return nil, errors.New("parbus: data group is required")
	}
	if opts.RS == nil || opts.WR == nil {
		return nil, errors.New("parbus: RS and WR pins are required")
	}
	width := len(opts.Data.Pins())
	if width != 8 && width != 16 {
		return nil, fmt.Errorf("parbus: data group must have 8 or 16 pins, got %d", width)
	}
	o := *opts
	if o.ResetIdle == 0 {
		o.ResetIdle = DefaultOpts.ResetIdle
	}
	if o.ResetPulse == 0 {
		o.ResetPulse = DefaultOpts.ResetPulse
	}
	if o.ResetSettle == 0 {
		o.ResetSettle = DefaultOpts.ResetSettle
	}
	if o.ReadSettle == 0 {
		o.ReadSettle = DefaultOpts.ReadSettle
	}
	b := &GPIO{
		data:  o.Data,
		cs:    o.CS,
		rs:    o.RS,
		wr:    o.WR,
		rd:    o.RD,
		rst:   o.RST,
		width: width,
		mask:  gpio.GPIOValue(1)<<uint(width) - 1,
		opts:  o,
	}
	if err := b.idle(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *GPIO) String() string {
	return fmt.Sprintf("parbus.GPIO{%s, %d bit}", b.data, b.width)
}

// Halt implements conn.Resource.
//
// It releases chip select and halts the data group.
func (b *GPIO) Halt() error {
	if err := b.idle(); err != nil {
		return err
	}
	return b.data.Halt()
}

// Width implements Bus.
func (b *GPIO) Width() int {
	return b.width
}

// Select implements Bus.
func (b *GPIO) Select() error {
	return out(b.cs, gpio.Low)
}

// Deselect implements Bus.
func (b *GPIO) Deselect() error {
	return out(b.cs, gpio.High)
}

// WriteCommand implements Bus.
func (b *GPIO) WriteCommand(c uint16) error {
	if err := b.rs.Out(gpio.Low); err != nil {
		return err
	}
	if err := b.Write16(c); err != nil {
		return err
	}
	return b.rs.Out(gpio.High)
}

// WriteData implements Bus.
func (b *GPIO) WriteData(d uint16) error {
	return b.Write16(d)
}

// Write8 implements Bus.
func (b *GPIO) Write8(v byte) error {
	if err := b.drive(gpio.GPIOValue(v)); err != nil {
		return err
	}
	return b.strobeWrite()
}

// Write16 implements Bus.
func (b *GPIO) Write16(w uint16) error {
	if b.width == 16 {
		if err := b.drive(gpio.GPIOValue(w)); err != nil {
			return err
		}
		return b.strobeWrite()
	}
	if err := b.Write8(byte(w >> 8)); err != nil {
		return err
	}
	return b.Write8(byte(w))
}

// Fill16 implements Filler.
//
// The data lines are set once per distinct byte and only WR is toggled.
func (b *GPIO) Fill16(w uint16, n int) error {
	if n <= 0 {
		return nil
	}
	strobes := n
	if b.width == 8 {
		if hi, lo := byte(w>>8), byte(w); hi != lo {
			for i := 0; i < n; i++ {
				if err := b.Write16(w); err != nil {
					return err
				}
			}
			return nil
		}
		strobes = 2 * n
	}
	if err := b.drive(gpio.GPIOValue(w)); err != nil {
		return err
	}
	for i := 0; i < strobes; i++ {
		if err := b.strobeWrite(); err != nil {
			return err
		}
	}
	return nil
}

// Read8 implements Bus.
func (b *GPIO) Read8() (byte, error) {
	v, err := b.strobeRead()
	return byte(v), err
}

// Read16 implements Bus.
func (b *GPIO) Read16() (uint16, error) {
	if b.width == 16 {
		v, err := b.strobeRead()
		return uint16(v), err
	}
	hi, err := b.strobeRead()
	if err != nil {
		return 0, err
	}
	lo, err := b.strobeRead()
	return uint16(hi&0xFF)<<8 | uint16(lo&0xFF), err
}

// SetDirection implements Bus.
//
// Turning the bus to Input reconfigures each data pin that supports it as an
// input. Output is restored by the next write.
func (b *GPIO) SetDirection(d Direction) error {
	if d == b.dir {
		return nil
	}
	b.dir = d
	if d == Output || b.rd == nil {
		return nil
	}
	for _, p := range b.data.Pins() {
		if in, ok := p.(gpio.PinIn); ok {
			if err := in.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
				return err
			}
		}
	}
	time.Sleep(b.opts.ReadSettle)
	return nil
}

// Reset implements Bus.
func (b *GPIO) Reset() error {
	if err := b.idle(); err != nil {
		return err
	}
	if b.rst == nil {
		return nil
	}
	time.Sleep(b.opts.ResetIdle)
	if err := b.rst.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(b.opts.ResetPulse)
	if err := b.rst.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(b.opts.ResetSettle)
	return nil
}

// idle puts every control line in its inactive state.
func (b *GPIO) idle() error {
	b.dir = Output
	for _, p := range []gpio.PinOut{b.cs, b.rd, b.wr, b.rst, b.rs} {
		if err := out(p, gpio.High); err != nil {
			return err
		}
	}
	return nil
}

func (b *GPIO) drive(v gpio.GPIOValue) error {
	b.dir = Output
	b.last = v & b.mask
	return b.data.Out(b.last, b.mask)
}

func (b *GPIO) strobeWrite() error {
	if err := b.wr.Out(gpio.Low); err != nil {
		return err
	}
	return b.wr.Out(gpio.High)
}

func (b *GPIO) strobeRead() (gpio.GPIOValue, error) {
	if b.rd == nil {
		// Nothing drives the lines but the host.
		return b.last, nil
	}
	if err := b.rd.Out(gpio.Low); err != nil {
		return 0, err
	}
	v, err := b.data.Read(b.mask)
	if err2 := b.rd.Out(gpio.High); err == nil {
		err = err2
	}
	return v & b.mask, err
}

func out(p gpio.PinOut, l gpio.Level) error {
	if p == nil {
		return nil
	}
	return p.Out(l)
}

var _ Bus = &GPIO{}
var _ Filler = &GPIO{}
var _ conn.Resource = &GPIO{}
