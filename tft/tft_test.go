// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tft

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/tftlcd/parbus"
	"github.com/GermanBionicSystems/tftlcd/parbus/parbustest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func init() {
	sleep = func(time.Duration) {}
}

// record is one command and the data written after it.
type record struct {
	cmd  uint16
	data []uint16
}

func records(ops []parbustest.Op) []record {
	var out []record
	for _, op := range ops {
		switch op.Kind {
		case parbustest.Command:
			out = append(out, record{cmd: op.V})
		case parbustest.Data8, parbustest.Data16:
			if len(out) == 0 {
				out = append(out, record{cmd: 0xFFFF})
			}
			out[len(out)-1].data = append(out[len(out)-1].data, op.V)
		}
	}
	return out
}

func diffRecords(t *testing.T, name string, ops []parbustest.Op, want []record) {
	t.Helper()
	if diff := cmp.Diff(records(ops), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("%s difference (-got +want):\n%s", name, diff)
	}
}

func repeat(v uint16, n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// newTestDev returns a device configured as id in rotation 0, with the
// recorded operations cleared.
func newTestDev(t *testing.T, id ChipID, b parbus.Bus, opts *Opts) *Dev {
	t.Helper()
	d, err := New(b, opts)
	if err != nil {
		t.Fatal(err)
	}
	d.configure(DefaultRegistry.info(id))
	if err := d.SetRotation(0); err != nil {
		t.Fatal(err)
	}
	clearOps(b)
	return d
}

func clearOps(b parbus.Bus) {
	switch r := b.(type) {
	case *parbustest.Record:
		r.Ops = nil
	case *parbustest.Playback:
		r.Ops = nil
	}
}

// failingBus fails every read.
type failingBus struct {
	parbustest.Record
}

func (f *failingBus) Read8() (byte, error) {
	return 0, errors.New("bus failure")
}

func (f *failingBus) Read16() (uint16, error) {
	return 0, errors.New("bus failure")
}

func TestNew(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error on nil bus")
	}
	if _, err := New(&parbustest.Record{}, &Opts{Width: -1}); err == nil {
		t.Fatal("expected error on negative size")
	}
	d, err := New(&parbustest.Record{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := d.String(), "tft.Dev{unknown (0x0000, 240x320), record}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if d.Bounds().Dx() != 240 || d.Bounds().Dy() != 320 {
		t.Errorf("Bounds() = %v", d.Bounds())
	}
}

func TestNew_SizeOverride(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x9341, b, &Opts{Width: 320, Height: 480})
	if err := d.SetRotation(1); err != nil {
		t.Fatal(err)
	}
	if d.Bounds().Dx() != 480 || d.Bounds().Dy() != 320 {
		t.Errorf("Bounds() = %v", d.Bounds())
	}
}

func TestBegin_MIPI(t *testing.T) {
	b := &parbustest.Record{}
	d, err := New(b, &Opts{Rotation: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Begin(0x9341); err != nil {
		t.Fatal(err)
	}
	if b.Ops[0].Kind != parbustest.Reset {
		t.Errorf("first operation is %s, want a reset", b.Ops[0])
	}
	cmds := b.Commands()
	want := []uint16{0xB0, 0x01, 0x28, 0x3A}
	if diff := cmp.Diff(cmds[:len(want)], want); diff != "" {
		t.Errorf("prologue (-got +want):\n%s", diff)
	}
	tail := []uint16{0x11, 0x29, 0x36, 0x2A, 0x2B, 0x33, 0x37, 0x13, 0x20}
	if diff := cmp.Diff(cmds[len(cmds)-len(tail):], tail); diff != "" {
		t.Errorf("epilogue (-got +want):\n%s", diff)
	}
	if d.Rotation() != 1 || d.MADCTL() != 0x28 {
		t.Errorf("rotation %d MADCTL %#x", d.Rotation(), d.MADCTL())
	}
	if d.ID() != 0x9341 || d.Name() != "ILI9341" || !d.Capabilities().MIPIDCS {
		t.Errorf("unexpected chip %s", d)
	}
	if b.Selected() || b.Direction() != parbus.Output {
		t.Error("bus left busy")
	}
}

func TestBegin_Legacy(t *testing.T) {
	b := &parbustest.Record{}
	d, err := New(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Begin(0x9325); err != nil {
		t.Fatal(err)
	}
	got := records(b.Ops)
	if got[0].cmd != 0xB0 || got[1].cmd != 0x00E5 {
		t.Errorf("init starts with %#x, %#x", got[0].cmd, got[1].cmd)
	}
	last := got[len(got)-1]
	if last.cmd != 0x61 || last.data[0] != 1 {
		t.Errorf("last write is %#x=%#x, want REV set", last.cmd, last.data)
	}
}

func TestBegin_Unknown(t *testing.T) {
	b := &parbustest.Record{}
	d, err := New(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Begin(0xD3D3); err != nil {
		t.Fatal(err)
	}
	if d.Name() != "unknown" || d.Regs() != ili9320Regs {
		t.Errorf("unknown chip driven as %s with %s", d.Name(), d.Regs())
	}
}

func TestHalt(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x9341, b, nil)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "Halt", b.Ops, []record{{cmd: 0x28}})

	b = &parbustest.Record{}
	d = newTestDev(t, 0x9325, b, nil)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "Halt", b.Ops, []record{{cmd: 0x07, data: []uint16{0}}})
}

func TestRawAccess(t *testing.T) {
	b := &parbustest.Playback{Regs: map[uint16][]uint16{0xD3: {0x00, 0x00, 0x93, 0x41}}}
	d, err := New(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	v, err := d.ReadRegister(0xD3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x9341 {
		t.Errorf("ReadRegister() = %#x", v)
	}
	b.Ops = nil
	if err := d.PushCommand(0xB9, 0xFF, 0x83, 0x57); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteRegister(0x03, 0x1030); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "raw", b.Ops, []record{
		{cmd: 0xB9, data: []uint16{0xFF, 0x83, 0x57}},
		{cmd: 0x03, data: []uint16{0x1030}},
	})
}

func TestRunInitTable(t *testing.T) {
	b := &parbustest.Record{}
	d := newTestDev(t, 0x9341, b, nil)
	if err := d.RunInitTable([]byte{0xC0, 2, 0x01, 0x02, Delay8, 10, 0x29, 0}); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "RunInitTable", b.Ops, []record{
		{cmd: 0xC0, data: []uint16{1, 2}},
		{cmd: 0x29},
	})
	for _, table := range [][]byte{{0xC0}, {0xC0, 3, 0x01}} {
		if err := d.RunInitTable(table); err == nil {
			t.Errorf("RunInitTable(%#v) expected error", table)
		}
	}
	b.Ops = nil
	if err := d.RunInitRegs([]uint16{0x10, 0x1690, Delay16, 50, 0x07, 0x0133}); err != nil {
		t.Fatal(err)
	}
	diffRecords(t, "RunInitRegs", b.Ops, []record{
		{cmd: 0x10, data: []uint16{0x1690}},
		{cmd: 0x07, data: []uint16{0x0133}},
	})
	if err := d.RunInitRegs([]uint16{0x10}); err == nil {
		t.Error("expected error on odd table")
	}
}

func TestRegistry(t *testing.T) {
	ids := DefaultRegistry.IDs()
	if len(ids) < 40 {
		t.Fatalf("only %d chips registered", len(ids))
	}
	for _, id := range ids {
		c, ok := DefaultRegistry.Lookup(id)
		if !ok || c.ID != id {
			t.Fatalf("Lookup(%s) = %v, %t", id, c.ID, ok)
		}
		if c.Family.mipiDCS() != c.Caps.MIPIDCS {
			t.Errorf("%s: family %s disagrees with capabilities %s", c.Name, c.Family, c.Caps)
		}
		if c.Init != nil && !c.Caps.MIPIDCS || c.InitRegs != nil && c.Caps.MIPIDCS {
			t.Errorf("%s: init table does not match the command set", c.Name)
		}
	}
	r := NewRegistry(ChipInfo{ID: 0x1234, Name: "custom"})
	r.Register(ChipInfo{ID: 0x1234, Name: "replaced", Family: FamilyMIPI})
	c, ok := r.Lookup(0x1234)
	if !ok || c.Name != "replaced" || c.Size.X != 240 {
		t.Errorf("Lookup() = %+v, %t", c, ok)
	}
	if _, ok := r.Lookup(0x9341); ok {
		t.Error("a new registry must not contain the defaults")
	}
}

func TestRegistry_Family(t *testing.T) {
	r := NewRegistry(
		ChipInfo{ID: 0x1234, Family: FamilyMIPI},
		ChipInfo{ID: 0x5678, Caps: Capabilities{MIPIDCS: true}},
		ChipInfo{ID: 0x9ABC, Family: FamilySSD1289, Caps: Capabilities{MIPIDCS: true}},
	)
	data := []struct {
		id     ChipID
		family Family
		mipi   bool
	}{
		{0x1234, FamilyMIPI, true},
		{0x5678, FamilyMIPI, true},
		{0x9ABC, FamilySSD1289, false},
	}
	for _, line := range data {
		c, _ := r.Lookup(line.id)
		if c.Family != line.family || c.Caps.MIPIDCS != line.mipi {
			t.Errorf("%s: family %s MIPI %t", line.id, c.Family, c.Caps.MIPIDCS)
		}
	}

	// A MIPI family registered without capabilities rotates through MADCTL.
	b := &parbustest.Record{}
	d, err := New(b, &Opts{Registry: r})
	if err != nil {
		t.Fatal(err)
	}
	d.configure(r.info(0x1234))
	if err := d.SetRotation(0); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range b.Commands() {
		found = found || c == 0x36
	}
	if !found {
		t.Errorf("MADCTL not written: %v", b.Commands())
	}
}

func TestCapabilitiesString(t *testing.T) {
	if got := (Capabilities{}).String(); got != "none" {
		t.Errorf("String() = %q", got)
	}
	c, _ := DefaultRegistry.Lookup(0x1963)
	got := c.Caps.String()
	for _, want := range []string{"MIPI_DCS", "READ_NODUMMY", "INVERT_SS", "MV_AXIS"} {
		if !strings.Contains(got, want) {
			t.Errorf("%q does not contain %s", got, want)
		}
	}
}
