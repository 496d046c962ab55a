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

// Package mutate implements the operators which derive new genomes from
// the current best one.
//
// Gene operators ([GeneOp]) change a single polygon, genome operators
// ([GenomeOp]) add, remove or reorder polygons. A [Strategy] combines them
// into one probabilistic mutation step, driven by an immutable [Config].
// Optional [Constraints] reject genes or genomes which are not acceptable.
//
// All operators are pure: they never modify their input and return the
// input itself when they cannot produce a different value.
package mutate
