// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import "fmt"

// Regs are the registers a controller uses for addressing in the current
// rotation.
type Regs struct {
	MC uint16 // column address (cursor)
	MP uint16 // page address (cursor)
	MW uint16 // memory write
	SC uint16 // start column
	EC uint16 // end column
	SP uint16 // start page
	EP uint16 // end page
}

func (r Regs) String() string {
	return fmt.Sprintf("Regs{MC:0x%X MP:0x%X MW:0x%X SC:0x%X EC:0x%X SP:0x%X EP:0x%X}", r.MC, r.MP, r.MW, r.SC, r.EC, r.SP, r.EP)
}

// swapped exchanges the column and page registers.
func (r Regs) swapped() Regs {
	r.MC, r.MP = r.MP, r.MC
	r.SC, r.SP = r.SP, r.SC
	r.EC, r.EP = r.EP, r.EC
	return r
}

var (
	mipiRegs     = Regs{MC: 0x2A, MP: 0x2B, MW: 0x2C, SC: 0x2A, EC: 0x2A, SP: 0x2B, EP: 0x2B}
	ili9320Regs  = Regs{MC: 0x20, MP: 0x21, MW: 0x22, SC: 0x50, EC: 0x51, SP: 0x52, EP: 0x53}
	spfd5420Regs = Regs{MC: 0x200, MP: 0x201, MW: 0x202, SC: 0x210, EC: 0x211, SP: 0x212, EP: 0x213}
	ili9225Regs  = Regs{MC: 0x20, MP: 0x21, MW: 0x22, SC: 0x37, EC: 0x36, SP: 0x39, EP: 0x38}
	s6d0139Regs  = Regs{MC: 0x20, MP: 0x21, MW: 0x22, SC: 0x46, EC: 0x46, SP: 0x48, EP: 0x47}
	ssd1289Regs  = Regs{MC: 0x4E, MP: 0x4F, MW: 0x22, SC: 0x44, EC: 0x44, SP: 0x45, EP: 0x46}
)

// MADCTL bits.
const (
	madctlMY  = 0x80
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlML  = 0x10
	madctlBGR = 0x08
)

// orientationBase is the MADCTL value of each rotation for a controller with
// no inverted scan bits.
var orientationBase = [4]byte{
	madctlMX | madctlBGR,
	madctlMV | madctlBGR,
	madctlMY | madctlML | madctlBGR,
	madctlMY | madctlMX | madctlMV | madctlML | madctlBGR,
}

// orientationByte returns the MADCTL value of rotation r, adjusted for the
// controller's scan and color order wiring.
func orientationByte(c Capabilities, r int) byte {
	v := orientationBase[r&3]
	if c.InvertGS {
		v ^= madctlMY
	}
	if c.InvertSS {
		v ^= madctlMX
	}
	if c.InvertRGB {
		v ^= madctlBGR
	}
	return v
}

// SetRotation sets the rotation, r is taken modulo 4. Rotations are 90°
// steps clockwise from portrait.
//
// The address window is reset to the full screen and scrolling is disabled.
func (d *Dev) SetRotation(r int) error {
	d.rotation = r & 3
	d.width, d.height = d.native.X, d.native.Y
	if d.rotation&1 != 0 {
		d.width, d.height = d.height, d.width
	}
	val := orientationByte(d.info.Caps, d.rotation)
	t := d.txn()
	var regs Regs
	if d.info.Caps.MIPIDCS {
		switch d.info.Family {
		case FamilyRM68140:
			var gs, ss byte
			if val&madctlMY != 0 {
				gs = 1 << 6
			}
			if val&madctlMX != 0 {
				ss = 1 << 5
			}
			val &= madctlMV | madctlBGR
			t.writeCmdParams(0xB6, 0, gs|ss|0x02, 0x3B)
		case FamilyMADCTLScan:
			if val&madctlMY != 0 {
				val |= 0x01
			}
			if val&madctlMX != 0 {
				val |= 0x02
			}
			val &^= d.info.MADCTLClear
			val |= d.info.MADCTLSet
		}
		regs = mipiRegs
		t.writeCmdParams(0x36, val)
		d.madctl = uint16(val)
	} else {
		regs, d.madctl = d.legacyOrientation(t, val)
	}
	if d.rotation&1 != 0 && !d.info.Caps.MVAxis {
		regs = regs.swapped()
	}
	d.regs = regs
	if t.err != nil {
		return t.err
	}
	if err := d.SetAddrWindow(0, 0, d.width-1, d.height-1); err != nil {
		return err
	}
	return d.VertScroll(0, d.native.Y, 0)
}

// legacyOrientation decomposes the MADCTL value into the scan direction and
// entry mode registers of pre-MIPI controllers.
func (d *Dev) legacyOrientation(t *txn, val byte) (Regs, uint16) {
	var regs Regs
	switch d.info.Family {
	case FamilySSD1289:
		if d.rotation&1 != 0 {
			val ^= madctlMY | madctlMX | madctlML
		}
		d.drivOut = 0x013F
		if val&madctlMY != 0 {
			d.drivOut |= 1 << 14
		}
		if val&madctlMX != 0 {
			d.drivOut |= 1 << 9
		}
		if d.rev {
			d.drivOut |= 1 << 13
		}
		if val&madctlBGR != 0 {
			d.drivOut |= 0x0800
		}
		var am uint16
		if val&madctlMV != 0 {
			am = 1 << 3
		}
		t.writeCmdData(0x01, d.drivOut)
		t.writeCmdData(0x11, am|0x6070)
		return ssd1289Regs, am | 0x6070
	case FamilyILI9225, FamilyS6D0154, FamilyS6D0139:
		var gs, ss uint16
		if val&madctlMY != 0 {
			gs = 1 << 9
		}
		if val&madctlMX != 0 {
			ss = 1 << 8
		}
		var nl uint16
		switch d.info.Family {
		case FamilyILI9225:
			regs, nl = ili9225Regs, 0x1C
		case FamilyS6D0154:
			regs, nl = ili9225Regs, 0x28
		default:
			regs, nl = s6d0139Regs, 0x27
		}
		t.writeCmdData(0x01, gs|ss|nl)
	case FamilySPFD5420:
		regs = spfd5420Regs
		var gs uint16
		if val&madctlMY != 0 {
			gs = 1 << 15
		}
		nl := uint16((432/8)-1) << 9
		if d.info.HalfNL {
			nl >>= 1
		}
		t.writeCmdData(0x400, gs|nl)
		t.writeCmdData(0x01, ss(val))
	default:
		regs = ili9320Regs
		var gs uint16
		if val&madctlMY != 0 {
			gs = 1 << 15
		}
		t.writeCmdData(0x60, gs|0x2700)
		t.writeCmdData(0x01, ss(val))
	}
	var entry uint16
	if val&madctlMV != 0 {
		entry = 1 << 3
	}
	if d.info.ToggleBGR && (d.rotation == 1 || d.rotation == 2) {
		val ^= madctlBGR
	}
	if val&madctlBGR != 0 {
		entry |= 0x1000
	}
	entry |= 0x0030
	t.writeCmdData(0x03, entry)
	return regs, entry
}

// ss is the source scan bit of the driver output control register.
func ss(val byte) uint16 {
	if val&madctlMX != 0 {
		return 1 << 8
	}
	return 0
}
