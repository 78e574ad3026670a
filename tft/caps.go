// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import "strings"

// Capabilities are the protocol variations of a controller.
//
// They are a pure function of the chip identifier and never change once a
// device is identified.
type Capabilities struct {
	// MIPIDCS means windowing uses 0x2A/0x2B/0x2C and orientation uses MADCTL
	// (0x36). Otherwise the legacy register pair addressing is used.
	MIPIDCS bool
	// AutoReadInc means GRAM reads advance the address. Otherwise the address
	// is issued again before every pixel read.
	AutoReadInc bool
	// ReadBGR means read back pixels have red and blue swapped.
	ReadBGR bool
	// ReadLowHigh means read back 16 bit words are byte swapped.
	ReadLowHigh bool
	// Read24Bits means read back pixels are three 8 bit R, G, B transfers.
	Read24Bits bool
	// XSAXEA16Bit means the start and end address of one axis are packed in
	// one 16 bit register.
	XSAXEA16Bit bool
	// ReadNoDummy means no dummy transfer precedes GRAM read data.
	ReadNoDummy bool
	// InvertGS inverts the gate (row) scan direction.
	InvertGS bool
	// InvertSS inverts the source (column) scan direction.
	InvertSS bool
	// MVAxis means the controller exchanges the axes itself in landscape.
	MVAxis bool
	// InvertRGB inverts the color order bit.
	InvertRGB bool
	// RevScreen means the panel is wired with inverted display polarity.
	RevScreen bool
}

func (c Capabilities) String() string {
	var s []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{c.MIPIDCS, "MIPI_DCS"},
		{c.AutoReadInc, "AUTO_READINC"},
		{c.ReadBGR, "READ_BGR"},
		{c.ReadLowHigh, "READ_LOWHIGH"},
		{c.Read24Bits, "READ_24BITS"},
		{c.XSAXEA16Bit, "XSA_XEA_16BIT"},
		{c.ReadNoDummy, "READ_NODUMMY"},
		{c.InvertGS, "INVERT_GS"},
		{c.InvertSS, "INVERT_SS"},
		{c.MVAxis, "MV_AXIS"},
		{c.InvertRGB, "INVERT_RGB"},
		{c.RevScreen, "REV_SCREEN"},
	} {
		if f.set {
			s = append(s, f.name)
		}
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "|")
}

// mipi is the common capability set of MIPI DCS controllers.
var mipi = Capabilities{MIPIDCS: true, AutoReadInc: true, MVAxis: true}
