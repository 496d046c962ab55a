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
	"sync/atomic"
	"time"
)

// tickMeter counts worker iterations since the last reset.
type tickMeter struct {
	start atomic.Int64 // unix nanoseconds
	ticks atomic.Uint64
}

func (m *tickMeter) Reset(now time.Time) {
	m.ticks.Store(0)
	m.start.Store(now.UnixNano())
}

func (m *tickMeter) Tick() {
	m.ticks.Add(1)
}

// Rate returns the average number of ticks per second since the last
// reset.
func (m *tickMeter) Rate(now time.Time) float64 {
	start := m.start.Load()
	if start == 0 {
		return 0
	}
	elapsed := now.Sub(time.Unix(0, start)).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.ticks.Load()) / elapsed
}
