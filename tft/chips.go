// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import (
	"fmt"
	"image"
	"sort"
	"sync"
)

// ChipID identifies a controller. Values are historical, usually the part
// number of the silicon.
type ChipID uint16

func (c ChipID) String() string {
	return fmt.Sprintf("0x%04X", uint16(c))
}

// Family selects the register map used for windowing, orientation, scrolling
// and inversion.
type Family uint8

// Register map families.
const (
	// FamilyILI9320 is the legacy default: cursor 0x20/0x21, GRAM 0x22, window
	// 0x50-0x53, gate scan 0x60, entry mode 0x03.
	FamilyILI9320 Family = iota
	// FamilyMIPI is the MIPI DCS command set.
	FamilyMIPI
	// FamilyRM68140 is MIPI DCS with the scan direction in 0xB6.
	FamilyRM68140
	// FamilyMADCTLScan is MIPI DCS with GS and SS in the low bits of MADCTL.
	FamilyMADCTLScan
	// FamilySPFD5420 uses 0x200-0x213 for addressing and 0x400 for gate scan.
	FamilySPFD5420
	// FamilyILI9225 uses 0x36-0x39 for the window.
	FamilyILI9225
	// FamilyS6D0154 is like FamilyILI9225 with a different driver output.
	FamilyS6D0154
	// FamilyS6D0139 uses 0x46-0x48 for the window.
	FamilyS6D0139
	// FamilySSD1289 uses 0x4E/0x4F for the cursor and 0x44-0x46 for the window.
	FamilySSD1289
	// FamilyST7781 is FamilyILI9320 with a different scroll control.
	FamilyST7781
)

var familyNames = [...]string{"ILI9320", "MIPI", "RM68140", "MADCTLScan", "SPFD5420", "ILI9225", "S6D0154", "S6D0139", "SSD1289", "ST7781"}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return fmt.Sprintf("Family(%d)", f)
}

// mipiDCS reports if the family is driven with MIPI DCS commands.
func (f Family) mipiDCS() bool {
	return f == FamilyMIPI || f == FamilyRM68140 || f == FamilyMADCTLScan
}

// ChipInfo describes everything the driver needs to know about a controller.
type ChipInfo struct {
	ID     ChipID
	Name   string
	Family Family
	Caps   Capabilities
	// Size is the native portrait panel size.
	Size image.Point

	// MADCTLClear and MADCTLSet are applied to the orientation byte of
	// FamilyMADCTLScan controllers.
	MADCTLClear byte
	MADCTLSet   byte
	// GRAMOffset is the number of unused GRAM lines on the far side of the
	// panel, visible in rotations 2 and 3.
	GRAMOffset int
	// ExtraDummy adds one 8 bit dummy read before GRAM data.
	ExtraDummy bool
	// ByteDummy uses an 8 bit dummy read on a legacy controller.
	ByteDummy bool
	// ToggleBGR flips the color order in rotations 1 and 2.
	ToggleBGR bool
	// OddWindowFix corrects one line and one column windows in landscape and
	// restores the full window after a fill.
	OddWindowFix bool
	// HalfNL halves the number of gate lines of a FamilySPFD5420 controller.
	HalfNL bool

	// Init is a MIPI initialization table, see RunInitTable.
	Init []byte
	// InitRegs is a legacy initialization table, see RunInitRegs.
	InitRegs []uint16
}

func (c *ChipInfo) String() string {
	return fmt.Sprintf("%s (%s, %dx%d)", c.Name, c.ID, c.Size.X, c.Size.Y)
}

// Registry is a set of supported controllers, keyed by ChipID.
//
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	chips map[ChipID]ChipInfo
}

// NewRegistry returns a registry holding chips.
func NewRegistry(chips ...ChipInfo) *Registry {
	r := &Registry{chips: make(map[ChipID]ChipInfo, len(chips))}
	for _, c := range chips {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a controller.
//
// Family and Caps.MIPIDCS are made to agree: a MIPI family sets MIPIDCS, and
// MIPIDCS with the default family selects FamilyMIPI. MIPIDCS is cleared on
// the other legacy families.
func (r *Registry) Register(c ChipInfo) {
	if c.Size == (image.Point{}) {
		c.Size = image.Point{X: 240, Y: 320}
	}
	switch {
	case c.Family.mipiDCS():
		c.Caps.MIPIDCS = true
	case c.Caps.MIPIDCS && c.Family == FamilyILI9320:
		c.Family = FamilyMIPI
	default:
		c.Caps.MIPIDCS = false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chips[c.ID] = c
}

// Lookup returns the controller registered as id.
func (r *Registry) Lookup(id ChipID) (ChipInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chips[id]
	return c, ok
}

// IDs returns the registered identifiers in ascending order.
func (r *Registry) IDs() []ChipID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ChipID, 0, len(r.chips))
	for id := range r.chips {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// info returns the registered controller or the legacy default.
func (r *Registry) info(id ChipID) ChipInfo {
	if c, ok := r.Lookup(id); ok {
		return c
	}
	return ChipInfo{ID: id, Name: "unknown", Family: FamilyILI9320, Size: image.Point{X: 240, Y: 320}}
}

func with(c Capabilities, f func(c *Capabilities)) Capabilities {
	f(&c)
	return c
}

var (
	portrait240 = image.Point{X: 240, Y: 320}
	tall240     = image.Point{X: 240, Y: 400}
	big320      = image.Point{X: 320, Y: 480}
)

// DefaultRegistry holds every controller this package knows how to drive.
var DefaultRegistry = NewRegistry(
	// MIPI DCS.
	ChipInfo{ID: 0x9341, Name: "ILI9341", Family: FamilyMIPI, Size: portrait240, Init: ili9341Init,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x9340, Name: "ILI9340", Family: FamilyMIPI, Size: portrait240, Init: ili9341Init,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x9338, Name: "ILI9338", Family: FamilyMIPI, Size: portrait240,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x9486, Name: "ILI9486", Family: FamilyMIPI, Size: big320, Init: ili9486Init, Caps: mipi},
	ChipInfo{ID: 0x9488, Name: "ILI9488", Family: FamilyMIPI, Size: big320, Init: ili9486Init,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x7796, Name: "ST7796", Family: FamilyMIPI, Size: big320,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x5310, Name: "NT35310", Family: FamilyMIPI, Size: big320,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x7789, Name: "ST7789V", Family: FamilyMIPI, Size: portrait240, Init: st7789Init,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits, c.RevScreen = true, true })},
	ChipInfo{ID: 0x7735, Name: "ST7735S", Family: FamilyMIPI, Size: image.Point{X: 128, Y: 160},
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits, c.RevScreen = true, true })},
	ChipInfo{ID: 0x9163, Name: "ILI9163", Family: FamilyMIPI, Size: image.Point{X: 128, Y: 160},
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x8357, Name: "HX8357B", Family: FamilyMIPI, Size: big320, Caps: mipi},
	ChipInfo{ID: 0x0099, Name: "HX8357D", Family: FamilyMIPI, Size: big320, Init: hx8357dInit,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits = true })},
	ChipInfo{ID: 0x9090, Name: "HX8357C", Family: FamilyMIPI, Size: big320, Init: hx8357dInit,
		Caps: with(mipi, func(c *Capabilities) { c.Read24Bits, c.RevScreen = true, true })},
	ChipInfo{ID: 0x9327, Name: "ILI9327", Family: FamilyMIPI, Size: tall240, GRAMOffset: 32, Caps: mipi},
	ChipInfo{ID: 0x1520, Name: "R61520", Family: FamilyMIPI, Size: portrait240,
		Caps: Capabilities{MIPIDCS: true, MVAxis: true, RevScreen: true, Read24Bits: true}},
	ChipInfo{ID: 0x1526, Name: "R61526", Family: FamilyMIPI, Size: portrait240, OddWindowFix: true,
		Caps: Capabilities{MIPIDCS: true, MVAxis: true, RevScreen: true, Read24Bits: true}},
	ChipInfo{ID: 0x1581, Name: "R61581", Family: FamilyMIPI, Size: big320,
		Caps: Capabilities{MIPIDCS: true, MVAxis: true, RevScreen: true, Read24Bits: true}},
	ChipInfo{ID: 0x8031, Name: "FK8031", Family: FamilyMIPI, Size: portrait240, Caps: mipi},
	ChipInfo{ID: 0x2053, Name: "unknown 0x2053", Family: FamilyMIPI, Size: portrait240, Caps: mipi},
	ChipInfo{ID: 0xAC11, Name: "unknown 0xAC11", Family: FamilyMIPI, Size: portrait240, Caps: mipi},
	ChipInfo{ID: 0x8347, Name: "HX8347-A", Family: FamilyMIPI, Size: portrait240, Caps: mipi},
	ChipInfo{ID: 0x1602, Name: "unknown 0x1602", Family: FamilyMIPI, Size: portrait240, Caps: mipi},
	ChipInfo{ID: 0x6814, Name: "RM68140", Family: FamilyRM68140, Size: big320, Caps: mipi},
	ChipInfo{ID: 0x1963, Name: "SSD1963", Family: FamilyMADCTLScan, Size: image.Point{X: 480, Y: 800},
		MADCTLClear: 0xC0,
		Caps:        with(mipi, func(c *Capabilities) { c.ReadNoDummy, c.InvertSS = true, true })},
	ChipInfo{ID: 0x9481, Name: "ILI9481", Family: FamilyMADCTLScan, Size: big320,
		MADCTLClear: 0xD0,
		Caps:        with(mipi, func(c *Capabilities) { c.ReadBGR = true })},
	ChipInfo{ID: 0x1511, Name: "R61511", Family: FamilyMADCTLScan, Size: big320,
		MADCTLClear: 0x10, MADCTLSet: 0xC0, ExtraDummy: true,
		Caps: with(mipi, func(c *Capabilities) { c.RevScreen, c.Read24Bits = true, true })},

	// ILI9320 compatible. The ILI932x parts do not advance the address on
	// GRAM reads.
	ChipInfo{ID: 0x9320, Name: "ILI9320", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{RevScreen: true, ReadBGR: true}},
	ChipInfo{ID: 0x9325, Name: "ILI9325", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{RevScreen: true, InvertGS: true}},
	ChipInfo{ID: 0x9328, Name: "ILI9328", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{RevScreen: true, InvertGS: true}},
	ChipInfo{ID: 0x9335, Name: "ILI9335", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{RevScreen: true, InvertGS: true}},
	ChipInfo{ID: 0xB505, Name: "R61505V", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true, ReadLowHigh: true}},
	ChipInfo{ID: 0xC505, Name: "R61505W", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true, ReadLowHigh: true}},
	ChipInfo{ID: 0x4535, Name: "LGDP4535", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true}},
	ChipInfo{ID: 0x5408, Name: "SPFD5408", Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true, ReadBGR: true, InvertGS: true}},
	ChipInfo{ID: 0x8230, Name: "UC8230", Size: portrait240, ToggleBGR: true, InitRegs: ili9325Init,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true, InvertGS: true}},
	ChipInfo{ID: 0x7783, Name: "ST7781", Family: FamilyST7781, Size: portrait240, InitRegs: ili9325Init,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true, InvertGS: true}},

	// SPFD5420 compatible.
	ChipInfo{ID: 0x5420, Name: "SPFD5420", Family: FamilySPFD5420, Size: tall240, HalfNL: true,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true}},
	ChipInfo{ID: 0x9326, Name: "ILI9326", Family: FamilySPFD5420, Size: tall240, HalfNL: true,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true}},
	ChipInfo{ID: 0xB509, Name: "R61509V", Family: FamilySPFD5420, Size: tall240,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true}},
	ChipInfo{ID: 0x7793, Name: "ST7793", Family: FamilySPFD5420, Size: tall240,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true}},

	// Other legacy register maps.
	ChipInfo{ID: 0x9225, Name: "ILI9225", Family: FamilyILI9225, Size: image.Point{X: 176, Y: 220},
		Caps: Capabilities{AutoReadInc: true, RevScreen: true}},
	ChipInfo{ID: 0x0154, Name: "S6D0154", Family: FamilyS6D0154, Size: image.Point{X: 240, Y: 320},
		Caps: Capabilities{AutoReadInc: true, RevScreen: true}},
	ChipInfo{ID: 0x0139, Name: "S6D0139", Family: FamilyS6D0139, Size: image.Point{X: 240, Y: 320},
		Caps: Capabilities{AutoReadInc: true, RevScreen: true, XSAXEA16Bit: true}},
	ChipInfo{ID: 0x1289, Name: "SSD1289", Family: FamilySSD1289, Size: image.Point{X: 240, Y: 320}, ByteDummy: true,
		Caps: Capabilities{AutoReadInc: true, RevScreen: true, XSAXEA16Bit: true}},
)
