// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb565 implements the 16 bit color format used by TFT LCD
// controllers: 5 bits of red, 6 bits of green and 5 bits of blue, red in the
// most significant bits.
//
// It also implements the fixed point transcoding to the 15 bit layout some
// controllers are strapped to, where the least significant green bit is
// dropped and blue is shifted up by one bit.
package rgb565

import (
	"fmt"
	"image"
	"image/color"

	"tinygo.org/x/drivers/pixel"
)

// Color is a RGB565 pixel.
type Color uint16

// RGBA implements color.Color.
func (c Color) RGBA() (uint32, uint32, uint32, uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	r := r5<<3 | r5>>2
	g := g6<<2 | g6>>4
	b := b5<<3 | b5>>2
	return r<<8 | r, g<<8 | g, b<<8 | b, 0xFFFF
}

func (c Color) String() string {
	return fmt.Sprintf("rgb565(%#04x)", uint16(c))
}

// New returns the color closest to the 8 bit per channel r, g, b.
func New(r, g, b uint8) Color {
	// RGB565BE holds the bytes in bus order, swapped from the value.
	return Color(SwapBytes(uint16(pixel.NewColor[pixel.RGB565BE](r, g, b))))
}

// R returns the red channel expanded to 8 bits as rrrrrxxx.
func (c Color) R() uint8 { return uint8((c & 0xF800) >> 8) }

// G returns the green channel expanded to 8 bits as ggggggxx.
func (c Color) G() uint8 { return uint8((c & 0x07E0) >> 3) }

// B returns the blue channel expanded to 8 bits as bbbbbxxx.
func (c Color) B() uint8 { return uint8((c & 0x001F) << 3) }

// Model converts any color to Color.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return New(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// To555 converts a RGB565 value to the 555 layout. The green LSB is lost and
// the blue LSB is duplicated.
func To555(c uint16) uint16 {
	return c&0xFFC0 | (c&0x1F)<<1 | c&0x01
}

// From555 converts a 555 value back to RGB565. The green LSB is extended
// from the green MSB.
func From555(c uint16) uint16 {
	return c&0xFFC0 | (c&0x0400)>>5 | (c&0x3F)>>1
}

// SwapRB exchanges the red and blue channels.
func SwapRB(c uint16) uint16 {
	return c&0x07E0 | c>>11 | c<<11
}

// SwapBytes exchanges the two bytes of c.
func SwapBytes(c uint16) uint16 {
	return c>>8 | c<<8
}

// Image is an in-memory image of Color pixels, stored big endian as sent on
// the bus.
type Image struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewImage returns a new Image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]byte, 2*r.Dx()*r.Dy()),
		Stride: 2 * r.Dx(),
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model { return Model }

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle { return i.Rect }

// Opaque reports that every pixel is opaque.
func (i *Image) Opaque() bool { return true }

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGB565At(x, y)
}

// RGB565At returns the pixel at x, y, or 0 if out of bounds.
func (i *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return 0
	}
	o := i.PixOffset(x, y)
	return Color(uint16(i.Pix[o])<<8 | uint16(i.Pix[o+1]))
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB565(x, y, Model.Convert(c).(Color))
}

// SetRGB565 sets the pixel at x, y. Out of bounds writes are ignored.
func (i *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	o := i.PixOffset(x, y)
	i.Pix[o] = byte(c >> 8)
	i.Pix[o+1] = byte(c)
}

// PixOffset returns the index of the first byte of the pixel at x, y.
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*2
}

// SubImage returns an image representing the portion of i visible through
// r. The returned value shares pixels with the original image.
func (i *Image) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &Image{}
	}
	return &Image{
		Pix:    i.Pix[i.PixOffset(r.Min.X, r.Min.Y):],
		Stride: i.Stride,
		Rect:   r,
	}
}
