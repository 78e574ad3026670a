// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/GermanBionicSystems/tftlcd/parbus"
	"github.com/GermanBionicSystems/tftlcd/rgb565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Opts defines the options for the device.
type Opts struct {
	// Rotation is applied by Begin.
	Rotation int
	// Width and Height override the native portrait size of the panel.
	Width  int
	Height int
	// RGB555 is for controllers strapped to a 15 bit pixel format.
	RGB555 bool
	// Registry is the set of known controllers. Defaults to DefaultRegistry.
	Registry *Registry
	// Trace, when set, receives every identification probe and its result.
	Trace func(format string, args ...interface{})
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{}

// Dev is a handle to a TFT LCD controller on a parallel bus.
//
// It is not safe for concurrent use.
type Dev struct {
	bus  parbus.Bus
	opts Opts
	reg  *Registry
	info ChipInfo

	isReset bool
	native  image.Point // portrait size
	// Orientation state.
	rotation int
	width    int
	height   int
	regs     Regs
	madctl   uint16
	rev      bool
	drivOut  uint16
}

// New returns a device on bus b. Call Identify and Begin before drawing.
func New(b parbus.Bus, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, errors.New("tft: bus is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("tft: invalid size %dx%d", opts.Width, opts.Height)
	}
	d := &Dev{bus: b, opts: *opts, reg: opts.Registry}
	if d.reg == nil {
		d.reg = DefaultRegistry
	}
	d.configure(d.reg.info(0))
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("tft.Dev{%s, %s}", &d.info, d.bus)
}

// ID returns the identifier passed to Begin.
func (d *Dev) ID() ChipID {
	return d.info.ID
}

// Name returns the name of the controller.
func (d *Dev) Name() string {
	return d.info.Name
}

// Info returns the description of the controller.
func (d *Dev) Info() ChipInfo {
	return d.info
}

// Capabilities returns the protocol variations of the controller.
func (d *Dev) Capabilities() Capabilities {
	return d.info.Caps
}

// Rotation returns the current rotation.
func (d *Dev) Rotation() int {
	return d.rotation
}

// Regs returns the addressing registers of the current rotation.
func (d *Dev) Regs() Regs {
	return d.regs
}

// MADCTL returns the last orientation value written, either MADCTL or the
// entry mode of a legacy controller.
func (d *Dev) MADCTL() uint16 {
	return d.madctl
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds implements display.Drawer. It follows the rotation.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Reset pulses the reset line and enables command access.
func (d *Dev) Reset() error {
	if err := d.bus.Reset(); err != nil {
		return err
	}
	t := d.txn()
	// R61520 needs this to answer ID reads.
	t.writeCmdData(0xB0, 0x0000)
	if t.err != nil {
		return t.err
	}
	d.isReset = true
	return nil
}

// Identify probes the controller and returns its identifier.
//
// It resets the controller first if it has not been reset yet. When nothing
// matches, the value of register 0 is returned as is. An error is only
// returned when the bus fails.
func (d *Dev) Identify() (ChipID, error) {
	if !d.isReset {
		if err := d.Reset(); err != nil {
			return 0, err
		}
	}
	t := d.txn()
	id, ok := identify(t, probes, d.opts.Trace)
	if t.err != nil {
		return 0, fmt.Errorf("tft: identification failed: %w", t.err)
	}
	if !ok {
		return 0, errors.New("tft: no identification probe matched")
	}
	if d.opts.Trace != nil {
		d.opts.Trace("tft: identified %s as %s", id, d.reg.info(id).Name)
	}
	return id, nil
}

// Begin resets the controller, initializes it as id and applies the rotation
// from Opts.
//
// An id missing from the registry is driven as a legacy ILI9320 and may not
// draw correctly.
func (d *Dev) Begin(id ChipID) error {
	if err := d.Reset(); err != nil {
		return err
	}
	d.configure(d.reg.info(id))
	if err := d.runInit(); err != nil {
		return err
	}
	if err := d.SetRotation(d.opts.Rotation); err != nil {
		return err
	}
	return d.InvertDisplay(false)
}

// Halt implements conn.Resource.
//
// It turns the display off.
func (d *Dev) Halt() error {
	t := d.txn()
	if d.info.Caps.MIPIDCS {
		t.writeCmdParams(0x28)
	} else {
		t.writeCmdData(0x07, 0x0000)
	}
	return t.err
}

// ReadRegister reads reg and returns the 16 bit value at position index.
func (d *Dev) ReadRegister(reg uint16, index int) (uint16, error) {
	t := d.txn()
	v := t.readReg(reg, index)
	return v, t.err
}

// WriteRegister writes one 16 bit value to reg.
func (d *Dev) WriteRegister(reg, v uint16) error {
	t := d.txn()
	t.writeCmdData(reg, v)
	return t.err
}

// PushCommand writes cmd followed by 8 bit parameters.
func (d *Dev) PushCommand(cmd uint16, params ...byte) error {
	t := d.txn()
	t.writeCmdParams(cmd, params...)
	return t.err
}

// configure switches to controller c without talking to it.
func (d *Dev) configure(c ChipInfo) {
	d.info = c
	d.native = c.Size
	if d.opts.Width != 0 {
		d.native.X = d.opts.Width
	}
	if d.opts.Height != 0 {
		d.native.Y = d.opts.Height
	}
	d.rev = c.Caps.RevScreen
	d.rotation = 0
	d.width, d.height = d.native.X, d.native.Y
	if c.Caps.MIPIDCS {
		d.regs = mipiRegs
	} else {
		d.regs = ili9320Regs
	}
}

func (d *Dev) txn() *txn {
	return &txn{b: d.bus}
}

var sleep = time.Sleep

var _ conn.Resource = &Dev{}
var _ display.Drawer = &Dev{}
