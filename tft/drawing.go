// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"

	"github.com/GermanBionicSystems/tftlcd/rgb565"
)

// Color565 returns the RGB565 value of 8 bit per channel r, g, b.
func Color565(r, g, b uint8) uint16 {
	return uint16(rgb565.New(r, g, b))
}

// SetAddrWindow sets the GRAM region targeted by the next pixel transfer,
// both corners included.
func (d *Dev) SetAddrWindow(x0, y0, x1, y1 int) error {
	t := d.txn()
	d.setAddrWindow(t, x0, y0, x1, y1)
	return t.err
}

func (d *Dev) setAddrWindow(t *txn, x, y, x1, y1 int) {
	if off := d.info.GRAMOffset; off != 0 {
		switch d.rotation {
		case 2:
			y, y1 = y+off, y1+off
		case 3:
			x, x1 = x+off, x1+off
		}
	}
	if d.info.OddWindowFix && d.rotation&1 != 0 {
		dx, dy := x1-x, y1-y
		if dy == 0 {
			y1++
		} else if dx == 0 {
			x1 += dy
			y1 -= dy
		}
	}
	if d.info.Caps.MIPIDCS {
		t.writeCmdParams(d.regs.SC, byte(x>>8), byte(x), byte(x1>>8), byte(x1))
		t.writeCmdParams(d.regs.SP, byte(y>>8), byte(y), byte(y1>>8), byte(y1))
		return
	}
	t.writeCmdData(d.regs.MC, uint16(x))
	t.writeCmdData(d.regs.MP, uint16(y))
	if x == x1 && y == y1 {
		// The cursor is enough for a single pixel.
		return
	}
	if d.info.Caps.XSAXEA16Bit {
		if d.rotation&1 != 0 {
			y = y1<<8 | y
			y1 = y
		} else {
			x = x1<<8 | x
			x1 = x
		}
	}
	t.writeCmdData(d.regs.SC, uint16(x))
	t.writeCmdData(d.regs.SP, uint16(y))
	t.writeCmdData(d.regs.EC, uint16(x1))
	t.writeCmdData(d.regs.EP, uint16(y1))
}

// fullWindow restores the full screen window.
func (d *Dev) fullWindow(t *txn) {
	d.setAddrWindow(t, 0, 0, d.width-1, d.height-1)
}

// restoreWindow resets the window after a block write on controllers that do
// not keep it, or whose landscape window was corrected.
func (d *Dev) restoreWindow(t *txn) {
	if !d.info.Caps.MIPIDCS || (d.info.OddWindowFix && d.rotation&1 != 0) {
		d.fullWindow(t)
	}
}

// DrawPixel sets one pixel. Coordinates outside the screen are ignored.
func (d *Dev) DrawPixel(x, y int, c uint16) error {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return nil
	}
	if d.opts.RGB555 {
		c = rgb565.To555(c)
	}
	t := d.txn()
	d.setAddrWindow(t, x, y, x, y)
	t.writeCmdData(d.regs.MW, c)
	return t.err
}

// FillRect fills a rectangle clipped to the screen. A negative w or h extends
// the rectangle left or up from x, y.
func (d *Dev) FillRect(x, y, w, h int, c uint16) error {
	if d.opts.RGB555 {
		c = rgb565.To555(c)
	}
	if w < 0 {
		w = -w
		x -= w
	}
	end := x + w
	if x < 0 {
		x = 0
	}
	if end > d.width {
		end = d.width
	}
	w = end - x
	if h < 0 {
		h = -h
		y -= h
	}
	end = y + h
	if y < 0 {
		y = 0
	}
	if end > d.height {
		end = d.height
	}
	h = end - y
	if w <= 0 || h <= 0 {
		return nil
	}
	t := d.txn()
	d.setAddrWindow(t, x, y, x+w-1, y+h-1)
	t.selectChip()
	t.writeCommand(d.regs.MW)
	outer, inner := h, w
	if h > w {
		outer, inner = w, h
	}
	for i := 0; i < outer; i++ {
		t.fill16(c, inner)
	}
	t.deselect()
	d.restoreWindow(t)
	return t.err
}

// FillScreen fills the whole screen.
func (d *Dev) FillScreen(c uint16) error {
	return d.FillRect(0, 0, d.width, d.height, c)
}

// DrawHLine draws a horizontal line of w pixels.
func (d *Dev) DrawHLine(x, y, w int, c uint16) error {
	return d.FillRect(x, y, w, 1, c)
}

// DrawVLine draws a vertical line of h pixels.
func (d *Dev) DrawVLine(x, y, h int, c uint16) error {
	return d.FillRect(x, y, 1, h, c)
}

// PushColors streams pixels into the current window.
//
// When first is set the memory write command is sent first; clear it to
// continue a previous transfer.
func (d *Dev) PushColors(block []uint16, first bool) error {
	t := d.txn()
	t.selectChip()
	if first {
		t.writeCommand(d.regs.MW)
	}
	for _, c := range block {
		t.write16(c)
	}
	t.deselect()
	return t.err
}

// PushBytes streams pixels stored as byte pairs in order into the current
// window. A trailing odd byte is ignored.
func (d *Dev) PushBytes(block []byte, first bool, order binary.ByteOrder) error {
	t := d.txn()
	t.selectChip()
	if first {
		t.writeCommand(d.regs.MW)
	}
	for i := 0; i+1 < len(block); i += 2 {
		t.write16(order.Uint16(block[i:]))
	}
	t.deselect()
	return t.err
}

// ReadGRAM reads the w*h pixels of a rectangle into block, row by row.
func (d *Dev) ReadGRAM(x, y int, block []uint16, w, h int) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	n := w * h
	if len(block) < n {
		return fmt.Errorf("tft: buffer of %d pixels is too small for %dx%d", len(block), w, h)
	}
	caps := d.info.Caps
	cmd := d.regs.MW
	if caps.MIPIDCS {
		cmd = 0x2E
	}
	t := d.txn()
	d.setAddrWindow(t, x, y, x+w-1, y+h-1)
	for i, row, col := 0, 0, 0; i < n && t.err == nil; {
		if !caps.MIPIDCS {
			t.writeCmdData(d.regs.MC, uint16(x+col))
			t.writeCmdData(d.regs.MP, uint16(y+row))
		}
		t.selectChip()
		t.writeCommand(cmd)
		t.input()
		switch {
		case caps.ReadNoDummy:
		case caps.MIPIDCS || d.info.ByteDummy:
			t.read8()
		default:
			t.read16()
		}
		if d.info.ExtraDummy {
			t.read8()
		}
		for i < n {
			block[i] = d.readColor(t)
			i++
			if !caps.AutoReadInc {
				break
			}
		}
		if col++; col >= w {
			col = 0
			if row++; row >= h {
				row = 0
			}
		}
		t.end()
	}
	if !caps.MIPIDCS {
		d.fullWindow(t)
	}
	return t.err
}

// ReadPixel returns the pixel at x, y.
func (d *Dev) ReadPixel(x, y int) (uint16, error) {
	var c [1]uint16
	err := d.ReadGRAM(x, y, c[:], 1, 1)
	return c[0], err
}

// readColor reads one pixel and converts it to RGB565.
func (d *Dev) readColor(t *txn) uint16 {
	caps := d.info.Caps
	var c uint16
	if caps.Read24Bits {
		r, g, b := t.read8(), t.read8(), t.read8()
		if caps.ReadBGR {
			r, b = b, r
		}
		c = Color565(r, g, b)
	} else {
		c = t.read16()
		if caps.ReadLowHigh {
			c = rgb565.SwapBytes(c)
		}
		if caps.ReadBGR {
			c = rgb565.SwapRB(c)
		}
	}
	if d.opts.RGB555 {
		c = rgb565.From555(c)
	}
	return c
}

// VertScroll scrolls lines rows starting at top by offset rows.
//
// An offset outside (-lines, lines) is treated as 0, which also disables
// scrolling on MIPI controllers.
func (d *Dev) VertScroll(top, lines, offset int) error {
	if off := d.info.GRAMOffset; off != 0 && (d.rotation == 2 || d.rotation == 3) {
		top += off
	}
	bfa := d.native.Y - top - lines + d.info.GRAMOffset
	if offset <= -lines || offset >= lines {
		offset = 0
	}
	vsp := top + offset
	if offset < 0 {
		vsp += lines
	}
	sea := top + lines - 1
	t := d.txn()
	if d.info.Caps.MIPIDCS {
		t.writeCmdParams(0x33, byte(top>>8), byte(top), byte(lines>>8), byte(lines), byte(bfa>>8), byte(bfa))
		t.writeCmdParams(0x37, byte(vsp>>8), byte(vsp))
		if offset == 0 {
			// Normal display mode.
			t.writeCmdParams(0x13)
		}
		return t.err
	}
	rev := d.revBit()
	switch d.info.Family {
	case FamilyST7781:
		t.writeCmdData(0x61, rev)
		t.writeCmdData(0x6A, uint16(vsp))
	case FamilyS6D0139:
		t.writeCmdData(0x07, 0x0213|rev<<2)
		t.writeCmdData(0x41, uint16(vsp))
	case FamilyILI9225, FamilyS6D0154:
		t.writeCmdData(0x31, uint16(sea))
		t.writeCmdData(0x32, uint16(top))
		t.writeCmdData(0x33, uint16(vsp-top))
	case FamilySSD1289:
		t.writeCmdData(0x41, uint16(vsp))
	case FamilySPFD5420:
		t.writeCmdData(0x401, 1<<1|rev)
		t.writeCmdData(0x404, uint16(vsp))
	default:
		// Most of these can only scroll the whole screen.
		t.writeCmdData(0x61, 1<<1|rev)
		t.writeCmdData(0x6A, uint16(vsp))
	}
	return t.err
}

// InvertDisplay inverts the colors. Panels wired with inverted polarity are
// compensated.
func (d *Dev) InvertDisplay(invert bool) error {
	d.rev = d.info.Caps.RevScreen != invert
	t := d.txn()
	if d.info.Caps.MIPIDCS {
		if d.rev {
			t.writeCmdParams(0x21)
		} else {
			t.writeCmdParams(0x20)
		}
		return t.err
	}
	rev := d.revBit()
	switch d.info.Family {
	case FamilyS6D0139, FamilyILI9225, FamilyS6D0154:
		t.writeCmdData(0x07, 0x13|rev<<2)
	case FamilySSD1289:
		d.drivOut &^= 1 << 13
		d.drivOut |= rev << 13
		t.writeCmdData(0x01, d.drivOut)
	case FamilySPFD5420:
		t.writeCmdData(0x401, 1<<1|rev)
	default:
		t.writeCmdData(0x61, rev)
	}
	return t.err
}

func (d *Dev) revBit() uint16 {
	if d.rev {
		return 1
	}
	return 0
}

// Draw implements display.Drawer.
//
// The rectangle is clipped to the screen and its pixels are streamed in one
// transfer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	orig := r
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	sp = sp.Add(r.Min.Sub(orig.Min))
	img, ok := src.(*rgb565.Image)
	if !ok || !(image.Rectangle{Min: sp, Max: sp.Add(r.Size())}).In(img.Rect) {
		buf := rgb565.NewImage(image.Rectangle{Max: r.Size()})
		draw.Src.Draw(buf, buf.Rect, src, sp)
		img, sp = buf, image.Point{}
	}
	t := d.txn()
	d.setAddrWindow(t, r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	t.selectChip()
	t.writeCommand(d.regs.MW)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			c := uint16(img.RGB565At(sp.X+x, sp.Y+y))
			if d.opts.RGB555 {
				c = rgb565.To555(c)
			}
			t.write16(c)
		}
	}
	t.deselect()
	d.restoreWindow(t)
	return t.err
}
