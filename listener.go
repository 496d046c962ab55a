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

import "seehuhn.de/go/vectorize/genome"

// Listener is notified about lifecycle events of a [Vectorizer].
//
// Improvement is called while the submission lock is held, so it must
// return quickly and must not call Submit.
type Listener interface {
	// Started is called after the vectorizer has started. best is nil if
	// no genome has been restored.
	Started(best *genome.Genome)

	// Improvement is called for every accepted genome.
	Improvement(best *genome.Genome)

	// Stopping is called when Stop begins.
	Stopping()

	// Stopped is called after all workers have ended.
	Stopped()
}

// ListenerFuncs adapts a set of optional functions to the [Listener]
// interface.
type ListenerFuncs struct {
	OnStarted     func(best *genome.Genome)
	OnImprovement func(best *genome.Genome)
	OnStopping    func()
	OnStopped     func()
}

// Started implements [Listener].
func (f ListenerFuncs) Started(best *genome.Genome) {
	if f.OnStarted != nil {
		f.OnStarted(best)
	}
}

// Improvement implements [Listener].
func (f ListenerFuncs) Improvement(best *genome.Genome) {
	if f.OnImprovement != nil {
		f.OnImprovement(best)
	}
}

// Stopping implements [Listener].
func (f ListenerFuncs) Stopping() {
	if f.OnStopping != nil {
		f.OnStopping()
	}
}

// Stopped implements [Listener].
func (f ListenerFuncs) Stopped() {
	if f.OnStopped != nil {
		f.OnStopped()
	}
}
