// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a 2D display.Drawer that outputs to a terminal
// using ANSI color codes.
//
// Useful to look at what a TFT panel shows without the panel, or to compare
// GRAM read back from a panel with what was drawn.
package termview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	xdraw "golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// W and H are the size of the view, one terminal cell per pixel.
	W, H    int
	Palette *ansi256.Palette
	// Out defaults to stdout.
	Out io.Writer

	_ struct{}
}

// Dev is a framebuffer that renders itself to the console on every draw.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette
	img     *image.NRGBA
	buf     bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("termview: invalid size %dx%d", opts.W, opts.H)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		palette: *p,
		img:     image.NewNRGBA(image.Rect(0, 0, opts.W, opts.H)),
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermView{%dx%d}", d.img.Rect.Dx(), d.img.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d.img, r, src, sp, draw.Src)
	return d.refresh()
}

// DrawScaled scales src to the whole view and renders it.
func (d *Dev) DrawScaled(src image.Image) error {
	xdraw.ApproxBiLinear.Scale(d.img, d.img.Rect, src, src.Bounds(), xdraw.Src, nil)
	return d.refresh()
}

func (d *Dev) refresh() error {
	// One allocation free buffer per frame.
	d.buf.Reset()
	for y := d.img.Rect.Min.Y; y < d.img.Rect.Max.Y; y++ {
		_, _ = d.buf.WriteString("\033[0m")
		for x := d.img.Rect.Min.X; x < d.img.Rect.Max.X; x++ {
			_, _ = io.WriteString(&d.buf, d.palette.Block(d.img.NRGBAAt(x, y)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
