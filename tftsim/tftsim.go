// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tftsim simulates a TFT LCD controller behind a parbus.Bus.
//
// It models enough of a MIPI DCS controller (ILI9341 style) or of a legacy
// ILI9325 style controller to identify it, address windows, write and read
// back GRAM, rotate and scroll. The bus is 8 bits wide.
package tftsim

import (
	"fmt"
	"image"
	"sync"

	"github.com/GermanBionicSystems/tftlcd/parbus"
	"github.com/GermanBionicSystems/tftlcd/rgb565"
)

// Config describes the simulated controller.
type Config struct {
	// Name is used by String.
	Name string
	// Legacy selects the ILI9320 register map instead of MIPI DCS.
	Legacy bool
	// Size is the native portrait size of the panel. Defaults to 240x320.
	Size image.Point
	// IDRegs are returned one byte per read strobe after the command.
	IDRegs map[uint16][]byte
	// Echo makes unscripted reads return the last byte written, like a bus
	// with no read line.
	Echo bool
	// Read24 makes MIPI GRAM reads return one byte per channel.
	Read24 bool
	// InvertGS is set when the panel is mounted with the gate scan inverted,
	// so that GS=1 is upright.
	InvertGS bool
}

// ILI9341 is a 240x320 MIPI DCS controller.
var ILI9341 = Config{
	Name:   "ILI9341",
	Size:   image.Point{X: 240, Y: 320},
	Read24: true,
	IDRegs: map[uint16][]byte{0xD3: {0x00, 0x00, 0x93, 0x41}},
}

// ILI9325 is a 240x320 legacy controller.
var ILI9325 = Config{
	Name:     "ILI9325",
	Legacy:   true,
	Size:     image.Point{X: 240, Y: 320},
	InvertGS: true,
	IDRegs:   map[uint16][]byte{0x00: {0x93, 0x25}},
}

// Scroll is the vertical scrolling state.
type Scroll struct {
	Top     int
	Lines   int
	Bottom  int
	Start   int
	Enabled bool
}

// Chip is a simulated controller. It implements parbus.Bus and
// parbus.Filler.
type Chip struct {
	mu   sync.Mutex
	cfg  Config
	gram *rgb565.Image

	selected bool
	dir      parbus.Direction
	resets   int
	strobes  int

	cmd     uint16
	last    byte
	params  []byte
	hiByte  int // pending high byte of a 16 bit transfer, -1 if none
	readPos int

	// MIPI state.
	xs, xe, ys, ye int
	madctl         byte
	// Legacy state.
	regs map[uint16]uint16

	// GRAM cursor in controller coordinates.
	cx, cy   int
	gramRead bool
	dummy    int
	pend     []byte

	inverted bool
	on       bool
	scroll   Scroll
}

// New returns a simulated controller.
func New(cfg *Config) *Chip {
	c := &Chip{cfg: *cfg, hiByte: -1}
	if c.cfg.Size == (image.Point{}) {
		c.cfg.Size = image.Point{X: 240, Y: 320}
	}
	c.gram = rgb565.NewImage(image.Rectangle{Max: c.cfg.Size})
	c.reset()
	return c
}

func (c *Chip) String() string {
	name := c.cfg.Name
	if name == "" {
		name = "sim"
	}
	return fmt.Sprintf("tftsim.Chip{%s}", name)
}

// Halt implements conn.Resource.
func (c *Chip) Halt() error {
	return nil
}

// Width implements parbus.Bus.
func (c *Chip) Width() int {
	return 8
}

// Select implements parbus.Bus.
func (c *Chip) Select() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = true
	return nil
}

// Deselect implements parbus.Bus.
func (c *Chip) Deselect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = false
	c.hiByte = -1
	return nil
}

// WriteCommand implements parbus.Bus.
func (c *Chip) WriteCommand(v uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strobes += 2
	c.command(v)
	return nil
}

// WriteData implements parbus.Bus.
func (c *Chip) WriteData(v uint16) error {
	return c.Write16(v)
}

// Write8 implements parbus.Bus.
func (c *Chip) Write8(b byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strobes++
	c.data(b)
	return nil
}

// Write16 implements parbus.Bus.
func (c *Chip) Write16(v uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strobes += 2
	c.data(byte(v >> 8))
	c.data(byte(v))
	return nil
}

// Fill16 implements parbus.Filler.
func (c *Chip) Fill16(v uint16, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < n; i++ {
		c.strobes += 2
		c.data(byte(v >> 8))
		c.data(byte(v))
	}
	return nil
}

// Read8 implements parbus.Bus.
func (c *Chip) Read8() (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dir != parbus.Input {
		return 0, fmt.Errorf("tftsim: read while the bus is an output")
	}
	c.strobes++
	return c.read(), nil
}

// Read16 implements parbus.Bus.
func (c *Chip) Read16() (uint16, error) {
	hi, err := c.Read8()
	if err != nil {
		return 0, err
	}
	lo, err := c.Read8()
	return uint16(hi)<<8 | uint16(lo), err
}

// SetDirection implements parbus.Bus.
func (c *Chip) SetDirection(d parbus.Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dir = d
	return nil
}

// Reset implements parbus.Bus.
func (c *Chip) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets++
	c.reset()
	return nil
}

// Idle reports if chip select is released and the bus is an output.
func (c *Chip) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.selected && c.dir == parbus.Output
}

// Resets returns the number of hardware resets.
func (c *Chip) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// Strobes returns the number of bus strobes so far.
func (c *Chip) Strobes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strobes
}

// Image returns a copy of the GRAM as seen on the glass, in portrait.
func (c *Chip) Image() *rgb565.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	img := rgb565.NewImage(c.gram.Rect)
	copy(img.Pix, c.gram.Pix)
	return img
}

// MADCTL returns the memory access control value, or the entry mode of a
// legacy controller.
func (c *Chip) MADCTL() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.Legacy {
		return c.regs[0x03]
	}
	return uint16(c.madctl)
}

// Register returns the last value written to a legacy register.
func (c *Chip) Register(reg uint16) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[reg]
}

// Inverted reports if the controller inverts the colors.
func (c *Chip) Inverted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.Legacy {
		return c.regs[0x61]&1 != 0
	}
	return c.inverted
}

// On reports if the display is on.
func (c *Chip) On() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.Legacy {
		return c.regs[0x07]&0x03 == 0x03
	}
	return c.on
}

// Scroll returns the vertical scrolling state.
func (c *Chip) Scroll() Scroll {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll
}

func (c *Chip) reset() {
	c.cmd = 0
	c.params = nil
	c.hiByte = -1
	c.gramRead = false
	c.pend = nil
	c.madctl = 0
	c.xs, c.xe = 0, c.cfg.Size.X-1
	c.ys, c.ye = 0, c.cfg.Size.Y-1
	c.regs = map[uint16]uint16{
		0x50: 0, 0x51: uint16(c.cfg.Size.X - 1),
		0x52: 0, 0x53: uint16(c.cfg.Size.Y - 1),
		0x03: 0x0030,
	}
	c.inverted = false
	c.on = false
	c.scroll = Scroll{Lines: c.cfg.Size.Y}
}

func (c *Chip) command(v uint16) {
	c.cmd = v
	c.last = byte(v)
	c.params = c.params[:0]
	c.hiByte = -1
	c.readPos = 0
	c.gramRead = false
	c.pend = nil
	if c.cfg.Legacy {
		if v == 0x22 {
			c.cx, c.cy = int(c.regs[0x20]), int(c.regs[0x21])
			c.gramRead = true
			c.dummy = 2
		}
		return
	}
	switch v {
	case 0x01:
		c.madctl = 0
		c.on = false
	case 0x13:
		c.scroll.Enabled = false
	case 0x20:
		c.inverted = false
	case 0x21:
		c.inverted = true
	case 0x28:
		c.on = false
	case 0x29:
		c.on = true
	case 0x2C:
		c.cx, c.cy = c.xs, c.ys
	case 0x2E:
		c.cx, c.cy = c.xs, c.ys
		c.gramRead = true
		c.dummy = 1
	}
}

func (c *Chip) data(b byte) {
	c.last = b
	c.gramRead = false
	if c.cfg.Legacy {
		if c.hiByte < 0 {
			c.hiByte = int(b)
			return
		}
		w := uint16(c.hiByte)<<8 | uint16(b)
		c.hiByte = -1
		if c.cmd == 0x22 {
			c.writePixel(rgb565.Color(w))
			return
		}
		c.regs[c.cmd] = w
		c.legacyRegister(c.cmd, w)
		return
	}
	if c.cmd == 0x2C {
		if c.hiByte < 0 {
			c.hiByte = int(b)
			return
		}
		w := uint16(c.hiByte)<<8 | uint16(b)
		c.hiByte = -1
		c.writePixel(rgb565.Color(w))
		return
	}
	c.params = append(c.params, b)
	p := c.params
	switch {
	case c.cmd == 0x2A && len(p) == 4:
		c.xs, c.xe = int(p[0])<<8|int(p[1]), int(p[2])<<8|int(p[3])
	case c.cmd == 0x2B && len(p) == 4:
		c.ys, c.ye = int(p[0])<<8|int(p[1]), int(p[2])<<8|int(p[3])
	case c.cmd == 0x36 && len(p) == 1:
		c.madctl = p[0]
	case c.cmd == 0x33 && len(p) == 6:
		c.scroll.Top = int(p[0])<<8 | int(p[1])
		c.scroll.Lines = int(p[2])<<8 | int(p[3])
		c.scroll.Bottom = int(p[4])<<8 | int(p[5])
	case c.cmd == 0x37 && len(p) == 2:
		c.scroll.Start = int(p[0])<<8 | int(p[1])
		c.scroll.Enabled = true
	}
}

func (c *Chip) legacyRegister(reg, w uint16) {
	switch reg {
	case 0x61:
		c.scroll.Enabled = w&0x02 != 0
	case 0x6A:
		c.scroll.Start = int(w)
	}
}

func (c *Chip) read() byte {
	if c.gramRead {
		if c.dummy > 0 {
			c.dummy--
			return 0
		}
		if len(c.pend) == 0 {
			p := c.readPixel()
			if !c.cfg.Legacy && c.cfg.Read24 {
				c.pend = []byte{p.R(), p.G(), p.B()}
			} else {
				c.pend = []byte{byte(p >> 8), byte(p)}
			}
		}
		b := c.pend[0]
		c.pend = c.pend[1:]
		return b
	}
	script := c.cfg.IDRegs[c.cmd]
	if c.readPos < len(script) {
		b := script[c.readPos]
		c.readPos++
		return b
	}
	c.readPos++
	if c.cfg.Echo {
		return c.last
	}
	return 0
}

func (c *Chip) writePixel(p rgb565.Color) {
	x, y := c.glass(c.cx, c.cy)
	c.gram.SetRGB565(x, y, p)
	c.advance()
}

func (c *Chip) readPixel() rgb565.Color {
	x, y := c.glass(c.cx, c.cy)
	p := c.gram.RGB565At(x, y)
	c.advance()
	return p
}

// glass maps controller coordinates to the panel.
func (c *Chip) glass(x, y int) (int, int) {
	w, h := c.cfg.Size.X, c.cfg.Size.Y
	if c.cfg.Legacy {
		// x and y are GRAM addresses.
		if c.regs[0x01]&(1<<8) == 0 {
			x = w - 1 - x
		}
		gs := c.regs[0x60]&(1<<15) != 0
		if gs != c.cfg.InvertGS {
			y = h - 1 - y
		}
		return x, y
	}
	if c.madctl&0x20 != 0 {
		x, y = y, x
	}
	if c.madctl&0x40 == 0 {
		x = w - 1 - x
	}
	if c.madctl&0x80 != 0 {
		y = h - 1 - y
	}
	return x, y
}

// advance moves the cursor within the window.
func (c *Chip) advance() {
	if !c.cfg.Legacy {
		if c.cx++; c.cx > c.xe {
			c.cx = c.xs
			if c.cy++; c.cy > c.ye {
				c.cy = c.ys
			}
		}
		return
	}
	hs, he := int(c.regs[0x50]), int(c.regs[0x51])
	vs, ve := int(c.regs[0x52]), int(c.regs[0x53])
	if c.regs[0x03]&(1<<3) == 0 {
		if c.cx++; c.cx > he {
			c.cx = hs
			if c.cy++; c.cy > ve {
				c.cy = vs
			}
		}
		return
	}
	if c.cy++; c.cy > ve {
		c.cy = vs
		if c.cx++; c.cx > he {
			c.cx = hs
		}
	}
}

var _ parbus.Bus = &Chip{}
var _ parbus.Filler = &Chip{}
