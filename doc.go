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

// Package vectorize approximates a raster image by a stack of
// semi-transparent polygons.
//
// A [Vectorizer] keeps the best genome found so far and runs a pool of
// worker goroutines. Each worker mutates the current best genome, renders
// the candidate, scores it against the target image and submits it. The
// only way a candidate becomes the new best is [Vectorizer.Submit], which
// accepts strict improvements only. Accepted genomes are handed to an
// optional [GenomeStore] by a separate storage goroutine, and a polygon
// cache keeps rasterized genes of recent best genomes so that workers
// rarely need to rasterize unchanged polygons.
//
// The genome data model lives in package genome, the mutation operators
// in package mutate, and the error measure in package fitness.
package vectorize
