// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

// Controllers answer ID reads very differently, and many of them echo garbage
// or a neighbour's signature on registers they do not implement. The probes
// below are tried in order and the first matching rule wins, so moving a probe
// up or down changes which boards are recognized.

// readWidth is how many sub-reads make up one probe value.
type readWidth uint8

const (
	read16 readWidth = iota // readReg(reg, 0)
	read32                  // readReg(reg, 0)<<16 | readReg(reg, 1)
	read40                  // readReg(reg, 0)<<24 | readReg(reg, 1)<<8 | readReg(reg, 2)>>8
)

// rule matches v&mask == value.
type rule struct {
	mask  uint32
	value uint32
	// id is returned on match, unless raw is set or followUp is not nil.
	id ChipID
	// raw returns the low 16 bits of the value read.
	raw bool
	// followUp talks to the controller again to pick the identifier. When it
	// reports no match the search goes on.
	followUp func(t *txn) (ChipID, bool)
}

type probe struct {
	reg   uint16
	width readWidth
	// shift is applied to the value before matching.
	shift uint
	rules []rule
}

func exact(v uint16, id ChipID) rule {
	return rule{mask: 0xFFFF, value: uint32(v), id: id}
}

func self(v uint16) rule {
	return rule{mask: 0xFFFF, value: uint32(v), raw: true}
}

// hx8357Revision unlocks the extended command set and reads the revision.
func hx8357Revision(t *txn) (ChipID, bool) {
	t.writeCmdParams(0xB9, 0xFF, 0x83, 0x57)
	switch byte(t.readReg(0xD0, 0)) {
	case 0x99:
		return 0x0099, true
	case 0x90:
		return 0x9090, true
	}
	return 0, false
}

// probes is the identification decision list.
var probes = []probe{
	// Legacy device code register. These three fail every later test.
	{reg: 0x00, width: read16, rules: []rule{
		exact(0x5408, 0x5408),
		exact(0x5420, 0x5420),
		exact(0x8989, 0x1289),
	}},
	// HX8347-A.
	{reg: 0x67, width: read16, rules: []rule{
		exact(0x4747, 0x8347),
	}},
	// SSD1963 [01 57 61 01]; R61526 answers [xx FF FF FF] before its command
	// access is enabled.
	{reg: 0xA1, width: read32, rules: []rule{
		exact(0x6101, 0x1963),
		exact(0xFFFF, 0x1526),
	}},
	// Device code read.
	{reg: 0xBF, width: read40, rules: []rule{
		exact(0x8357, 0x8357),
		exact(0x9481, 0x9481),
		exact(0x1511, 0x1511),
		exact(0x1520, 0x1520),
		exact(0x1526, 0x1526),
		exact(0x1581, 0x1581),
		exact(0x1400, 0x6814),
	}},
	{reg: 0xD4, width: read32, rules: []rule{
		exact(0x5310, 0x5310),
	}},
	{reg: 0xD7, width: read32, rules: []rule{
		exact(0x8031, 0x8031),
	}},
	{reg: 0xEF, width: read40, rules: []rule{
		exact(0x9327, 0x9327),
	}},
	{reg: 0xFE, width: read32, shift: 8, rules: []rule{
		exact(0x2053, 0x2053),
	}},
	// Display identification information.
	{reg: 0x04, width: read32, rules: []rule{
		{mask: 0x00FFFFFF, value: 0x8000, followUp: hx8357Revision},
		exact(0x1526, 0x1526),
		exact(0x89F0, 0x7735),
		exact(0x8552, 0x7789),
		exact(0xAC11, 0xAC11),
	}},
	{reg: 0xD3, width: read32, shift: 8, rules: []rule{
		self(0x9163),
	}},
	// ID4, classified by its high byte. A write-only bus reads back the
	// command itself.
	{reg: 0xD3, width: read32, rules: []rule{
		{mask: 0xFF00, value: 0x9300, raw: true},
		{mask: 0xFF00, value: 0x9400, raw: true},
		{mask: 0xFF00, value: 0x9800, raw: true},
		{mask: 0xFF00, value: 0x7700, raw: true},
		{mask: 0xFF00, value: 0x1600, raw: true},
		self(0x00D3),
		self(0xD3D3),
	}},
	// Last resort: several legacy controllers only answer here.
	{reg: 0x00, width: read16, rules: []rule{
		{raw: true},
	}},
}

func (p *probe) read(t *txn) uint32 {
	var v uint32
	switch p.width {
	case read32:
		v = t.readReg32(p.reg)
	case read40:
		v = t.readReg40(p.reg)
	default:
		v = uint32(t.readReg(p.reg, 0))
	}
	return v >> p.shift
}

// identify runs the decision list. It returns false if nothing matched.
func identify(t *txn, list []probe, trace func(format string, args ...interface{})) (ChipID, bool) {
	for i := range list {
		p := &list[i]
		v := p.read(t)
		if t.err != nil {
			return 0, false
		}
		if trace != nil {
			trace("tft: probe %d reg 0x%02X = 0x%08X", i, p.reg, v)
		}
		for _, r := range p.rules {
			if v&r.mask != r.value {
				continue
			}
			switch {
			case r.followUp != nil:
				id, ok := r.followUp(t)
				if t.err != nil {
					return 0, false
				}
				if ok {
					return id, true
				}
				continue
			case r.raw:
				return ChipID(v), true
			default:
				return r.id, true
			}
		}
	}
	return 0, false
}
