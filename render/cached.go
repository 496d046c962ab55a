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

package render

import (
	"seehuhn.de/go/vectorize/genome"
)

// BitmapSource provides previously stamped genes.
// Implementations must be safe for concurrent use.
type BitmapSource interface {
	Lookup(gene *genome.Gene) (*Bitmap, bool)
}

// Cached paints genomes using stamps from a BitmapSource where possible,
// and rasterizes the remaining genes directly. The output is the same as
// that of Renderer.Render.
//
// A Cached renderer is not safe for concurrent use.
type Cached struct {
	*Renderer
	src BitmapSource

	hits, misses uint64
}

// NewCached returns a cache-aware renderer for canvases of the given size.
func NewCached(width, height int, src BitmapSource) *Cached {
	return &Cached{
		Renderer: New(width, height),
		src:      src,
	}
}

// Render paints g into dst, replacing its previous content.
func (c *Cached) Render(g *genome.Genome, dst *Canvas) {
	c.checkCanvas(dst)
	dst.Fill(g.Background)
	for _, gene := range g.All() {
		if bm, ok := c.src.Lookup(gene); ok {
			c.hits++
			bm.Blit(dst)
			continue
		}
		c.misses++
		c.Paint(gene, dst)
	}
}

// Stats returns the number of genes painted from the cache and directly.
func (c *Cached) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}
