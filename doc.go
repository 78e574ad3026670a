// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tftlcd is a container for the MCUFRIEND style TFT LCD shield
// driver.
//
// parbus drives the 8 or 16 bit 8080 parallel bus, tft identifies and drives
// the controller behind it, rgb565 holds the pixel format, tftsim simulates a
// controller and termview previews images in a terminal.
package tftlcd
