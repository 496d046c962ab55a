// seehuhn.de/go/vectorize - approximate images with evolving polygons
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package render paints genomes into ARGB pixel buffers.
//
// Pixels are packed non-premultiplied 0xAARRGGBB values. Genes are painted
// back to front with source-over compositing. A gene's contribution is
// first converted into a "stamp": the gene color with its alpha scaled by
// the coverage of each pixel. Direct rendering composites stamps as they
// are produced, while cached rendering composites stamps which were
// produced earlier and trimmed to their bounding box. Both give identical
// pixels.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"seehuhn.de/go/vectorize/genome"
)

// Canvas is a rectangular ARGB pixel buffer in row-major order.
type Canvas struct {
	Width, Height int
	Pix           []uint32
}

// NewCanvas returns a transparent canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Pix:    make([]uint32, width*height),
	}
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Fill sets every pixel to col.
func (c *Canvas) Fill(col genome.Color) {
	v := col.Packed()
	if v == 0 {
		clear(c.Pix)
		return
	}
	for i := range c.Pix {
		c.Pix[i] = v
	}
}

// Clear makes the canvas transparent.
func (c *Canvas) Clear() {
	clear(c.Pix)
}

// Image converts the canvas to an image.
func (c *Canvas) Image() *image.NRGBA {
	img := image.NewNRGBA(c.Bounds())
	for i, v := range c.Pix {
		p := img.Pix[4*i : 4*i+4 : 4*i+4]
		p[0] = uint8(v >> 16)
		p[1] = uint8(v >> 8)
		p[2] = uint8(v)
		p[3] = uint8(v >> 24)
	}
	return img
}

// FromImage converts img into a canvas of the same size.
func FromImage(img image.Image) *Canvas {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*b.Dx() {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	c := NewCanvas(b.Dx(), b.Dy())
	for i := range c.Pix {
		p := nrgba.Pix[4*i : 4*i+4 : 4*i+4]
		c.Pix[i] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	}
	return c
}

// Gray converts img into one byte per pixel, using the luminance of the
// image. Transparent pixels count as black.
func Gray(img image.Image) []uint8 {
	b := img.Bounds()
	res := make([]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			res = append(res, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return res
}

// Over composites the non-premultiplied color src over dst.
func Over(dst, src uint32) uint32 {
	sa := src >> 24
	switch sa {
	case 0:
		return dst
	case 255:
		return src
	}
	da := dst >> 24
	if da == 0 {
		return src
	}

	// weights scaled by 255
	ws := sa * 255
	wd := da * (255 - sa)
	wt := ws + wd
	half := wt / 2

	r := ((src>>16&0xff)*ws + (dst>>16&0xff)*wd + half) / wt
	g := ((src>>8&0xff)*ws + (dst>>8&0xff)*wd + half) / wt
	b := ((src&0xff)*ws + (dst&0xff)*wd + half) / wt
	a := (wt + 127) / 255
	return a<<24 | r<<16 | g<<8 | b
}

// stampPixel returns the color of a gene pixel with the given coverage.
func stampPixel(col genome.Color, coverage float32) uint32 {
	a := uint32(float32(col.A)*coverage + 0.5)
	if a == 0 {
		return 0
	}
	return min(a, 255)<<24 | uint32(col.R)<<16 | uint32(col.G)<<8 | uint32(col.B)
}
