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

// Package fitness measures how far a rendered genome is from the target
// image.
//
// The error of a pixel is the weighted sum of the squared differences of
// its four channels, multiplied by 256 minus the importance value of the
// pixel. Lower values are better and 0 is a perfect match.
package fitness

import (
	"fmt"
	"math"

	"seehuhn.de/go/vectorize/genome"
)

// Unscored is the fitness of a genome which has not been evaluated.
var Unscored = math.NaN()

// Weights scale the squared error of each channel.
type Weights struct {
	A, R, G, B float64
}

// DefaultWeights gives all channels the same weight.
var DefaultWeights = Weights{A: 1, R: 1, G: 1, B: 1}

// Validate checks that all weights are finite and non-negative.
func (w Weights) Validate() error {
	for _, v := range []float64{w.A, w.R, w.G, w.B} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid channel weight %g", v)
		}
	}
	return nil
}

// Function computes the fitness of rendered images.
// A Function is immutable and can be shared between goroutines.
type Function struct {
	Weights Weights
}

// New returns a fitness function with the given channel weights.
func New(w Weights) (*Function, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Function{Weights: w}, nil
}

// Default returns a fitness function with equal channel weights.
func Default() *Function {
	return &Function{Weights: DefaultWeights}
}

// Evaluate returns the error of rendered against target.
//
// Both buffers hold packed 0xAARRGGBB pixels. If importance is nil, every
// pixel has importance 255. The function panics if the buffer lengths
// differ.
func (f *Function) Evaluate(rendered, target []uint32, importance []uint8) float64 {
	if len(rendered) != len(target) {
		panic(fmt.Sprintf("fitness: %d rendered pixels for %d target pixels",
			len(rendered), len(target)))
	}
	if importance != nil && len(importance) != len(target) {
		panic(fmt.Sprintf("fitness: %d importance values for %d target pixels",
			len(importance), len(target)))
	}

	w := f.Weights
	var total float64
	for i, p := range rendered {
		q := target[i]
		if p == q {
			continue
		}
		dA := float64(int(p>>24) - int(q>>24))
		dR := float64(int(p>>16&0xff) - int(q>>16&0xff))
		dG := float64(int(p>>8&0xff) - int(q>>8&0xff))
		dB := float64(int(p&0xff) - int(q&0xff))
		e := dA*dA*w.A + dR*dR*w.R + dG*dG*w.G + dB*dB*w.B

		imp := 255
		if importance != nil {
			imp = int(importance[i])
		}
		total += e * float64(256-imp)
	}
	return total
}

// IsImprovement reports whether b is strictly better than a.
// An unscored b is never an improvement. Any scored b improves on an
// unscored a.
func IsImprovement(a, b float64) bool {
	if math.IsNaN(b) {
		return false
	}
	if math.IsNaN(a) {
		return true
	}
	return b < a
}

// Better reports whether genome b is strictly better than genome a.
func Better(a, b *genome.Genome) bool {
	return IsImprovement(a.Fitness, b.Fitness)
}
