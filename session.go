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

package vectorize

import (
	"errors"
	"fmt"
	"slices"
)

// Session holds the immutable inputs of a run.
type Session struct {
	Width, Height int

	// Target holds the target image as packed 0xAARRGGBB pixels in
	// row-major order.
	Target []uint32

	// Importance holds one weight per pixel. Pixels with higher values
	// contribute less to the fitness.
	Importance []uint8

	// Threads is the number of worker goroutines. With 0 workers, genomes
	// only change through Submit.
	Threads int

	// Seed determines the random streams of all workers.
	Seed int64
}

// NewSession checks and copies the inputs of a run. If importance is nil,
// every pixel gets importance 255.
func NewSession(width, height int, target []uint32, importance []uint8, threads int, seed int64) (*Session, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	n := width * height
	if len(target) != n {
		return nil, fmt.Errorf("target has %d pixels, want %d", len(target), n)
	}
	if importance == nil {
		importance = make([]uint8, n)
		for i := range importance {
			importance[i] = 255
		}
	} else if len(importance) != n {
		return nil, fmt.Errorf("importance map has %d pixels, want %d", len(importance), n)
	} else {
		importance = slices.Clone(importance)
	}
	if threads < 0 {
		return nil, errors.New("negative thread count")
	}
	return &Session{
		Width:      width,
		Height:     height,
		Target:     slices.Clone(target),
		Importance: importance,
		Threads:    threads,
		Seed:       seed,
	}, nil
}
