// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termview

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/tftlcd/rgb565"
	"github.com/maruel/ansi256"
)

func TestNew(t *testing.T) {
	if _, err := New(&Opts{W: 0, H: 1}); err == nil {
		t.Fatal("expected error")
	}
	d, err := New(&Opts{W: 4, H: 2, Out: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if s := d.String(); s != "TermView{4x2}" {
		t.Fatal(s)
	}
	if d.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatal(d.Bounds())
	}
}

func TestDraw(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(&Opts{W: 3, H: 2, Out: &buf})
	if err != nil {
		t.Fatal(err)
	}
	red := color.NRGBA{R: 0xFF, A: 0xFF}
	if err := d.Draw(image.Rect(1, 1, 5, 5), image.NewUniform(red), image.Point{}); err != nil {
		t.Fatal(err)
	}
	p := ansi256.Default
	b := func(c color.NRGBA) string { return p.Block(c) }
	want := "\033[0m" + b(color.NRGBA{}) + b(color.NRGBA{}) + b(color.NRGBA{}) + "\033[0m\n" +
		"\033[0m" + b(color.NRGBA{}) + b(red) + b(red) + "\033[0m\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	buf.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\033[0m\n" {
		t.Fatalf("%q", buf.String())
	}
}

func TestDrawScaled(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(&Opts{W: 4, H: 3, Out: &buf})
	if err != nil {
		t.Fatal(err)
	}
	src := rgb565.NewImage(image.Rect(0, 0, 320, 240))
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}
	if err := d.DrawScaled(src); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Fatalf("%d lines", n)
	}
	if c := d.img.NRGBAAt(3, 2); c.R < 0xF0 || c.G < 0xF0 || c.B < 0xF0 || c.A != 0xFF {
		t.Fatalf("got %v", c)
	}
}
