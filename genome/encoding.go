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

package genome

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// FormatVersion is the version byte written by the encoders.
// The decoders reject every other value.
const FormatVersion = 1

// Errors reported by the binary codecs. They are wrapped with details.
var (
	ErrVersion     = errors.New("unsupported format version")
	ErrVertexCount = errors.New("invalid vertex count")
	ErrGeneCount   = errors.New("invalid gene count")
	ErrCoordinate  = errors.New("coordinate does not fit in 16 bits")
	ErrTruncated   = errors.New("truncated data")
)

const (
	geneHeaderSize   = 1 + 4 + 1
	genomeHeaderSize = 1 + 4 + 8 + 4 + 4 + 4 + 4
	minGeneSize      = geneHeaderSize + MinVertices*4
)

// MarshalBinary encodes the gene.
//
// The format is: version byte, color as A, R, G, B bytes, vertex count byte,
// then the vertices as pairs of big-endian int16 values.
func (g *Gene) MarshalBinary() ([]byte, error) {
	return g.AppendBinary(make([]byte, 0, geneHeaderSize+4*len(g.xs)))
}

// AppendBinary appends the encoding of g to buf. On error, buf is
// returned unchanged.
func (g *Gene) AppendBinary(buf []byte) ([]byte, error) {
	start := len(buf)
	n := len(g.xs)
	if n < MinVertices || n > MaxVertices {
		return buf, fmt.Errorf("%w: %d", ErrVertexCount, n)
	}
	buf = append(buf, FormatVersion, g.color.A, g.color.R, g.color.G, g.color.B, byte(n))
	for i := range n {
		x, y := g.xs[i], g.ys[i]
		if x < math.MinInt16 || x > math.MaxInt16 || y < math.MinInt16 || y > math.MaxInt16 {
			return buf[:start], fmt.Errorf("%w: vertex %d is (%d, %d)", ErrCoordinate, i, x, y)
		}
		buf = binary.BigEndian.AppendUint16(buf, uint16(int16(x)))
		buf = binary.BigEndian.AppendUint16(buf, uint16(int16(y)))
	}
	return buf, nil
}

// UnmarshalGene decodes a gene which occupies all of data.
func UnmarshalGene(data []byte) (*Gene, error) {
	g, n, err := decodeGene(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after gene", len(data)-n)
	}
	return g, nil
}

// decodeGene decodes a gene from the start of data and returns the number
// of bytes consumed.
func decodeGene(data []byte) (*Gene, int, error) {
	if len(data) < geneHeaderSize {
		return nil, 0, fmt.Errorf("gene header: %w", ErrTruncated)
	}
	if data[0] != FormatVersion {
		return nil, 0, fmt.Errorf("gene: %w %d", ErrVersion, data[0])
	}
	c := Color{A: data[1], R: data[2], G: data[3], B: data[4]}
	n := int(data[5])
	if n < MinVertices {
		return nil, 0, fmt.Errorf("%w: %d", ErrVertexCount, n)
	}
	size := geneHeaderSize + 4*n
	if len(data) < size {
		return nil, 0, fmt.Errorf("gene with %d vertices: %w", n, ErrTruncated)
	}
	xs := make([]int32, n)
	ys := make([]int32, n)
	pos := geneHeaderSize
	for i := range n {
		xs[i] = int32(int16(binary.BigEndian.Uint16(data[pos:])))
		ys[i] = int32(int16(binary.BigEndian.Uint16(data[pos+2:])))
		pos += 4
	}
	return newGene(xs, ys, c), size, nil
}

// MarshalBinary encodes the genome.
//
// The format is: version byte, background as big-endian packed ARGB
// (0 means transparent), fitness as IEEE 754 bits, the improvement,
// generated and mutation counters as uint32, the gene count as uint32,
// followed by the encoded genes.
func (g *Genome) MarshalBinary() ([]byte, error) {
	if len(g.genes) == 0 {
		return nil, fmt.Errorf("%w: 0", ErrGeneCount)
	}
	buf := make([]byte, 0, genomeHeaderSize+len(g.genes)*(geneHeaderSize+4*6))
	buf = append(buf, FormatVersion)
	buf = binary.BigEndian.AppendUint32(buf, g.Background.Packed())
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(g.Fitness))
	buf = binary.BigEndian.AppendUint32(buf, g.Improvements)
	buf = binary.BigEndian.AppendUint32(buf, g.Generated)
	buf = binary.BigEndian.AppendUint32(buf, g.Mutations)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(g.genes)))
	for i, gene := range g.genes {
		var err error
		buf, err = gene.AppendBinary(buf)
		if err != nil {
			return nil, fmt.Errorf("gene %d: %w", i, err)
		}
	}
	return buf, nil
}

// UnmarshalGenome decodes a genome which occupies all of data.
func UnmarshalGenome(data []byte) (*Genome, error) {
	if len(data) < genomeHeaderSize {
		return nil, fmt.Errorf("genome header: %w", ErrTruncated)
	}
	if data[0] != FormatVersion {
		return nil, fmt.Errorf("genome: %w %d", ErrVersion, data[0])
	}
	bg := Unpack(binary.BigEndian.Uint32(data[1:]))
	fitness := math.Float64frombits(binary.BigEndian.Uint64(data[5:]))
	improvements := binary.BigEndian.Uint32(data[13:])
	generated := binary.BigEndian.Uint32(data[17:])
	mutations := binary.BigEndian.Uint32(data[21:])
	count := binary.BigEndian.Uint32(data[25:])
	if count == 0 {
		return nil, fmt.Errorf("%w: 0", ErrGeneCount)
	}
	rest := data[genomeHeaderSize:]
	if uint64(count)*minGeneSize > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: %d genes in %d bytes", ErrGeneCount, count, len(rest))
	}

	genes := make([]*Gene, count)
	for i := range genes {
		gene, n, err := decodeGene(rest)
		if err != nil {
			return nil, fmt.Errorf("gene %d: %w", i, err)
		}
		genes[i] = gene
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after genome", len(rest))
	}

	g := newGenome(bg, genes)
	g.Fitness = fitness
	g.Improvements = improvements
	g.Generated = generated
	g.Mutations = mutations
	return g, nil
}
