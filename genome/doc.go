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

// Package genome implements the data model of the polygon evolver.
//
// A [Gene] is a closed polygon with integer vertices and an ARGB fill color.
// A [Genome] is an ordered list of genes, painted back to front over a
// background color. Genes are immutable; operations which change a gene
// return a new value. A Genome's gene list is immutable as well, but the run
// counters and the fitness value are plain fields which the owner of a
// freshly created genome may set before publishing it to other goroutines.
//
// Both types have a versioned big-endian binary encoding. Decoding and
// re-encoding a value gives back the identical bytes.
package genome
