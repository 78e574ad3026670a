// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// tftdemo identifies a TFT LCD shield on a parallel GPIO bus, draws a test
// card on it and reads it back.
//
// Without a shield, -sim runs against a simulated controller.
//
// Typical wiring on a Raspberry Pi:
//
//	tftdemo -data GPIO5,GPIO6,GPIO12,GPIO13,GPIO16,GPIO19,GPIO20,GPIO21 \
//	  -cs GPIO8 -rs GPIO25 -wr GPIO24 -rd GPIO23 -rst GPIO22
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/GermanBionicSystems/tftlcd/parbus"
	"github.com/GermanBionicSystems/tftlcd/rgb565"
	"github.com/GermanBionicSystems/tftlcd/termview"
	"github.com/GermanBionicSystems/tftlcd/tft"
	"github.com/GermanBionicSystems/tftlcd/tftsim"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/gpioioctl"
)

var (
	sim      = flag.Bool("sim", false, "use a simulated controller instead of GPIO")
	simID    = flag.String("sim-id", "0x9341", "simulated controller: 0x9341 or 0x9325")
	idFlag   = flag.String("id", "", "skip identification and drive this controller, e.g. 0x9341")
	rotation = flag.Int("rotation", 1, "rotation, 0 to 3")
	dataPins = flag.String("data", "", "comma separated data pins, D0 first")
	csPin    = flag.String("cs", "", "chip select pin, empty if tied low")
	rsPin    = flag.String("rs", "", "register select pin")
	wrPin    = flag.String("wr", "", "write strobe pin")
	rdPin    = flag.String("rd", "", "read strobe pin, empty for a write-only bus")
	rstPin   = flag.String("rst", "", "reset pin, empty if not wired")
	preview  = flag.Int("preview", 64, "terminal preview width in columns, 0 to disable")
	list     = flag.Bool("list", false, "list the supported controllers and exit")
	verbose  = flag.Bool("v", false, "trace identification")
)

func main() {
	flag.Parse()
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "tftdemo: %s.\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	if *list {
		for _, id := range tft.DefaultRegistry.IDs() {
			c, _ := tft.DefaultRegistry.Lookup(id)
			fmt.Printf("%s  %-8s %s\n", &c, c.Family, c.Caps)
		}
		return nil
	}
	b, err := openBus()
	if err != nil {
		return err
	}
	defer b.Halt()

	opts := tft.DefaultOpts
	opts.Rotation = *rotation
	if *verbose {
		opts.Trace = log.Printf
	}
	dev, err := tft.New(b, &opts)
	if err != nil {
		return err
	}
	var id tft.ChipID
	if *idFlag != "" {
		v, err := strconv.ParseUint(*idFlag, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid -id: %w", err)
		}
		id = tft.ChipID(v)
	} else if id, err = dev.Identify(); err != nil {
		return err
	}
	if _, ok := tft.DefaultRegistry.Lookup(id); !ok {
		log.Printf("controller %s is not supported, driving it as a legacy ILI9320", id)
	}
	if err := dev.Begin(id); err != nil {
		return err
	}
	defer dev.Halt()
	log.Printf("%s: %s", dev, dev.Capabilities())

	card, err := testCard(dev.Bounds())
	if err != nil {
		return err
	}
	if err := dev.Draw(dev.Bounds(), card, image.Point{}); err != nil {
		return err
	}

	r := dev.Bounds()
	got := rgb565.NewImage(r)
	buf := make([]uint16, r.Dx()*r.Dy())
	if err := dev.ReadGRAM(0, 0, buf, r.Dx(), r.Dy()); err != nil {
		return err
	}
	diff := 0
	for i, c := range buf {
		x, y := i%r.Dx(), i/r.Dx()
		got.SetRGB565(x, y, rgb565.Color(c))
		if rgb565.Model.Convert(card.At(x, y)) != rgb565.Color(c) {
			diff++
		}
	}
	log.Printf("read back %d pixels, %d differ", len(buf), diff)

	if *preview > 0 {
		// The simulator shows the glass, in portrait.
		var src image.Image = got
		if c, ok := b.(*tftsim.Chip); ok {
			src = c.Image()
		}
		// Terminal cells are about twice as high as wide.
		rows := *preview * src.Bounds().Dy() / src.Bounds().Dx() / 2
		if rows == 0 {
			rows = 1
		}
		tv, err := termview.New(&termview.Opts{W: *preview, H: rows})
		if err != nil {
			return err
		}
		if err := tv.DrawScaled(src); err != nil {
			return err
		}
		if err := tv.Halt(); err != nil {
			return err
		}
	}
	return nil
}

// openBus returns the simulated bus or the GPIO one described by the flags.
func openBus() (parbus.Bus, error) {
	if *sim {
		switch strings.ToLower(*simID) {
		case "0x9341", "9341":
			return tftsim.New(&tftsim.ILI9341), nil
		case "0x9325", "9325":
			return tftsim.New(&tftsim.ILI9325), nil
		}
		return nil, fmt.Errorf("no simulated controller %q", *simID)
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if *dataPins == "" {
		return nil, errors.New("-data is required, or use -sim")
	}
	if len(gpioioctl.Chips) == 0 {
		return nil, errors.New("no GPIO chip found")
	}
	data, err := gpioioctl.Chips[0].LineSet(gpioioctl.LineOutput, gpio.NoEdge, gpio.PullNoChange, strings.Split(*dataPins, ",")...)
	if err != nil {
		return nil, err
	}
	o := parbus.DefaultOpts
	o.Data = data
	for _, p := range []struct {
		name string
		dst  *gpio.PinOut
	}{
		{*csPin, &o.CS},
		{*rsPin, &o.RS},
		{*wrPin, &o.WR},
		{*rdPin, &o.RD},
		{*rstPin, &o.RST},
	} {
		if p.name == "" {
			continue
		}
		pin := gpioreg.ByName(p.name)
		if pin == nil {
			return nil, fmt.Errorf("pin %q not found", p.name)
		}
		*p.dst = pin
	}
	return parbus.NewGPIO(&o)
}

// testCard draws color bars under a captioned circle.
func testCard(r image.Rectangle) (image.Image, error) {
	w, h := float64(r.Dx()), float64(r.Dy())
	dc := gg.NewContext(r.Dx(), r.Dy())
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	bars := [][3]float64{{1, 1, 1}, {1, 1, 0}, {0, 1, 1}, {0, 1, 0}, {1, 0, 1}, {1, 0, 0}, {0, 0, 1}}
	bw := w / float64(len(bars))
	for i, c := range bars {
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(float64(i)*bw, 0, bw, h*2/3)
		dc.Fill()
	}
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.DrawCircle(w/2, h/3, h/4)
	dc.Stroke()

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: h / 12}))
	dc.DrawStringAnchored("Hello from periph!", w/2, h*5/6, 0.5, 0.5)
	return dc.Image(), nil
}
