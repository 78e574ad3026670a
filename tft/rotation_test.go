// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import (
	"testing"

	"github.com/GermanBionicSystems/tftlcd/parbus/parbustest"
	"github.com/google/go-cmp/cmp"
)

func TestOrientationByte(t *testing.T) {
	data := []struct {
		name string
		caps Capabilities
		want [4]byte
	}{
		{"plain", Capabilities{}, [4]byte{0x48, 0x28, 0x98, 0xF8}},
		{"rgb", Capabilities{InvertRGB: true}, [4]byte{0x40, 0x20, 0x90, 0xF0}},
		{"gs", Capabilities{InvertGS: true}, [4]byte{0xC8, 0xA8, 0x18, 0x78}},
		{"ss", Capabilities{InvertSS: true}, [4]byte{0x08, 0x68, 0xD8, 0xB8}},
	}
	for _, line := range data {
		var got [4]byte
		for r := range got {
			got[r] = orientationByte(line.caps, r)
		}
		if got != line.want {
			t.Errorf("%s: got %#x, want %#x", line.name, got, line.want)
		}
	}
}

func TestSetRotation_MIPI(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x9341, b, nil)
	if err := d.SetRotation(1); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "SetRotation", b.Ops, []record{
		{cmd: 0x36, data: []uint16{0x28}},
		{cmd: 0x2A, data: []uint16{0, 0, 1, 0x3F}},
		{cmd: 0x2B, data: []uint16{0, 0, 0, 0xEF}},
		{cmd: 0x33, data: []uint16{0, 0, 1, 0x40, 0, 0}},
		{cmd: 0x37, data: []uint16{0, 0}},
		{cmd: 0x13},
	})
	if d.Bounds().Dx() != 320 || d.Bounds().Dy() != 240 {
		t.Errorf("Bounds() = %v", d.Bounds())
	}
	if d.Regs() != mipiRegs {
		t.Errorf("Regs() = %s", d.Regs())
	}
	if b.Selected() {
		t.Error("chip left selected")
	}
}

func TestSetRotation_RM68140(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x6814, b, nil)
	if err := d.SetRotation(0); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "SetRotation", b.Ops, []record{
		{cmd: 0xB6, data: []uint16{0, 0x22, 0x3B}},
		{cmd: 0x36, data: []uint16{0x08}},
		{cmd: 0x2A, data: []uint16{0, 0, 1, 0x3F}},
		{cmd: 0x2B, data: []uint16{0, 0, 1, 0xDF}},
		{cmd: 0x33, data: []uint16{0, 0, 1, 0xE0, 0, 0}},
		{cmd: 0x37, data: []uint16{0, 0}},
		{cmd: 0x13},
	})
}

func TestSetRotation_MADCTLScan(t *testing.T) {
	data := []struct {
		id       ChipID
		rotation int
		want     uint16
	}{
		{0x1963, 0, 0x08},
		{0x1963, 2, 0x1B},
		{0x9481, 0, 0x0A},
		{0x1511, 0, 0xCA},
	}
	for _, line := range data {
		b := &parbustest.Record{}
		d := newTestDev(t, line.id, b, nil)
		if err := d.SetRotation(line.rotation); err != nil {
			t.Fatal(err)
		}
		if got := d.MADCTL(); got != line.want {
			t.Errorf("%s rotation %d: MADCTL = %#x, want %#x", line.id, line.rotation, got, line.want)
		}
		if r := records(b.Ops); r[0].cmd != 0x36 || r[0].data[0] != line.want {
			t.Errorf("%s: first write %#x=%#x", line.id, r[0].cmd, r[0].data)
		}
	}
}

func TestSetRotation_ILI9325(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x9325, b, nil)
	if err := d.SetRotation(0); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "rotation 0", b.Ops, []record{
		{cmd: 0x60, data: []uint16{0xA700}},
		{cmd: 0x01, data: []uint16{0x0100}},
		{cmd: 0x03, data: []uint16{0x1030}},
		{cmd: 0x20, data: []uint16{0}},
		{cmd: 0x21, data: []uint16{0}},
		{cmd: 0x50, data: []uint16{0}},
		{cmd: 0x52, data: []uint16{0}},
		{cmd: 0x51, data: []uint16{239}},
		{cmd: 0x53, data: []uint16{319}},
		{cmd: 0x61, data: []uint16{3}},
		{cmd: 0x6A, data: []uint16{0}},
	})

	b.Ops = nil
	if err := d.SetRotation(1); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "rotation 1", b.Ops, []record{
		{cmd: 0x60, data: []uint16{0xA700}},
		{cmd: 0x01, data: []uint16{0}},
		{cmd: 0x03, data: []uint16{0x1038}},
		{cmd: 0x21, data: []uint16{0}},
		{cmd: 0x20, data: []uint16{0}},
		{cmd: 0x52, data: []uint16{0}},
		{cmd: 0x50, data: []uint16{0}},
		{cmd: 0x53, data: []uint16{319}},
		{cmd: 0x51, data: []uint16{239}},
		{cmd: 0x61, data: []uint16{3}},
		{cmd: 0x6A, data: []uint16{0}},
	})
	if d.MADCTL() != 0x1038 {
		t.Errorf("MADCTL() = %#x", d.MADCTL())
	}
}

func TestSetRotation_SPFD5420(t *testing.T) {
	for id, want := range map[ChipID]uint16{0x5420: 0x3500, 0xB509: 0x6A00} {
		b := &parbustest.Record{}
		d := newTestDev(t, id, b, nil)
		if err := d.SetRotation(0); err != nil {
			t.Fatal(err)
		}
		r := records(b.Ops)
		if r[0].cmd != 0x400 || r[0].data[0] != want {
			t.Errorf("%s: first write %#x=%#x, want 0x400=%#x", id, r[0].cmd, r[0].data, want)
		}
		if d.Regs() != spfd5420Regs {
			t.Errorf("%s: Regs() = %s", id, d.Regs())
		}
	}
}

func TestSetRotation_SSD1289(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x1289, b, nil)
	for _, line := range []struct {
		rotation      int
		drivOut, mode uint16
	}{
		{0, 0x2B3F, 0x6070},
		{1, 0x6B3F, 0x6078},
	} {
		b.Ops = nil
		if err := d.SetRotation(line.rotation); err != nil {
			t.Fatal(err)
		}
		r := records(b.Ops)
		if diff := cmp.Diff(r[:2], []record{
			{cmd: 0x01, data: []uint16{line.drivOut}},
			{cmd: 0x11, data: []uint16{line.mode}},
		}, cmp.AllowUnexported(record{})); diff != "" {
			t.Errorf("rotation %d (-got +want):\n%s", line.rotation, diff)
		}
	}
	if err := d.SetRotation(0); err != nil {
		t.Fatal(err)
	}
	b.Ops = nil
	if err := d.InvertDisplay(true); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "InvertDisplay", b.Ops, []record{{cmd: 0x01, data: []uint16{0x0B3F}}})
}

func TestSetRotation_ILI9225(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x9225, b, nil)
	if err := d.SetRotation(0); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "rotation 0", b.Ops, []record{
		{cmd: 0x01, data: []uint16{0x011C}},
		{cmd: 0x03, data: []uint16{0x1030}},
		{cmd: 0x20, data: []uint16{0}},
		{cmd: 0x21, data: []uint16{0}},
		{cmd: 0x37, data: []uint16{0}},
		{cmd: 0x39, data: []uint16{0}},
		{cmd: 0x36, data: []uint16{175}},
		{cmd: 0x38, data: []uint16{219}},
		{cmd: 0x31, data: []uint16{219}},
		{cmd: 0x32, data: []uint16{0}},
		{cmd: 0x33, data: []uint16{0}},
	})
}

func TestSetRotation_RoundTrip(t *testing.T) {
	for _, id := range DefaultRegistry.IDs() {
		b := &parbustest.Record{}
		d := newTestDev(t, id, b, nil)
		regs0, w, h := d.Regs(), d.Bounds().Dx(), d.Bounds().Dy()
		if err := d.SetRotation(5); err != nil {
			t.Fatal(err)
		}
		if d.Rotation() != 1 {
			t.Errorf("%s: Rotation() = %d", id, d.Rotation())
		}
		want := regs0
		if !d.Capabilities().MVAxis {
			want = regs0.swapped()
		}
		if d.Regs() != want {
			t.Errorf("%s: rotation 1 regs %s, want %s", id, d.Regs(), want)
		}
		if d.Bounds().Dx() != h || d.Bounds().Dy() != w {
			t.Errorf("%s: rotation 1 bounds %v", id, d.Bounds())
		}
		if err := d.SetRotation(0); err != nil {
			t.Fatal(err)
		}
		if d.Regs() != regs0 {
			t.Errorf("%s: rotation 0 regs %s, want %s", id, d.Regs(), regs0)
		}
		if b.Selected() {
			t.Errorf("%s: chip left selected", id)
		}
	}
}
