// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pileup

import (
	"github.com/rudyleute/detecting-mutations/basecount"
	"github.com/rudyleute/detecting-mutations/variant"
)

// InsertionSite is the insertion evidence accumulated at one reference
// anchor position: a base tally plus the set of read names that have
// already contributed to it (so a read's non-insertion coverage of the
// position is only counted once, per addValues below).
type InsertionSite struct {
	Counter basecount.Counter
	names   map[string]bool
}

func newInsertionSite() *InsertionSite {
	return &InsertionSite{names: make(map[string]bool)}
}

func (s *InsertionSite) hasName(name string) bool {
	return s.names[name]
}

func (s *InsertionSite) addName(name string) {
	s.names[name] = true
}

// Insertions is the windowed insertion aggregator (spec section 4.5),
// carrying thisWindow/nextWindow buckets keyed by reference position and
// the set of positions that saw at least one insertion this window.
type Insertions struct {
	thisWindow map[int]*InsertionSite
	nextWindow map[int]*InsertionSite
	indices    map[int]bool
}

// NewInsertions creates a fresh aggregator, seeding thisWindow from the
// previous window's nextWindow bucket (carried is nil for the first
// window). Every carried position holds insertion evidence, so each one is
// also seeded into indices.
func NewInsertions(carried map[int]*InsertionSite) *Insertions {
	thisWindow := carried
	if thisWindow == nil {
		thisWindow = make(map[int]*InsertionSite)
	}
	indices := make(map[int]bool)
	for pos := range thisWindow {
		indices[pos] = true
	}
	return &Insertions{
		thisWindow: thisWindow,
		nextWindow: make(map[int]*InsertionSite),
		indices:    indices,
	}
}

// NextWindow returns the carry-over bucket to seed the next window's
// aggregator.
func (ins *Insertions) NextWindow() map[int]*InsertionSite {
	return ins.nextWindow
}

func (ins *Insertions) siteAt(bucket map[int]*InsertionSite, pos int) *InsertionSite {
	s, ok := bucket[pos]
	if !ok {
		s = newInsertionSite()
		bucket[pos] = s
	}
	return s
}

// addValues applies addValues(start,end) from spec section 4.5 against one
// bucket (thisWindow or nextWindow): for isInsertion, each offset i tallies
// expanded[readIdx+i] at refIdx+i and records pos in indices; otherwise each
// offset i credits absence-of-insertion (a gap count) at refIdx+i, once per
// read name.
func (ins *Insertions) addValues(bucket map[int]*InsertionSite, refIdx, readIdx, start, end int, isInsertion bool, expanded []byte, name string) {
	for i := start; i < end; i++ {
		pos := refIdx + i
		s := ins.siteAt(bucket, pos)
		if isInsertion {
			s.Counter.Increase(basecount.FromByte(expanded[readIdx+i]))
			s.addName(name)
			ins.indices[pos] = true
		} else if !s.hasName(name) {
			s.Counter.Increase(basecount.BaseGap)
			s.addName(name)
		}
	}
}

// AddInsertion implements addInsertion(refIdx, readIdx, end, left,
// isInsertion) from spec section 4.5. When left != end the evidence spans
// the window boundary: the first `left` offsets go to thisWindow, the rest
// to nextWindow. Otherwise all of it goes to thisWindow.
func (ins *Insertions) AddInsertion(refIdx, readIdx, end, left int, isInsertion bool, expanded []byte, name string) {
	if left != end {
		ins.addValues(ins.thisWindow, refIdx, readIdx, 0, left, isInsertion, expanded, name)
		ins.addValues(ins.nextWindow, refIdx, readIdx, left, end, isInsertion, expanded, name)
		return
	}
	ins.addValues(ins.thisWindow, refIdx, readIdx, 0, end, isInsertion, expanded, name)
}

// InsertionCall is one emitted insertion mutation or recorded non-error,
// carrying the evidence counter at that anchor position.
type InsertionCall struct {
	Pos     int
	Symbol  basecount.Base
	Counter basecount.Counter
}

// FindInsertionMutations implements spec section 4.5's
// findInsertionMutations: for every anchor position with at least minReads
// total evidence, call FindMax(gap). A non-gap result is an insertion call;
// a gap result that the ground truth nonetheless expects to be an insertion
// at that position is recorded as a non-error (used by the comparator to
// attach evidence to an otherwise-bare missed call).
func (ins *Insertions) FindInsertionMutations(minReads int, groundTruth *variant.GroundTruth) (calls []InsertionCall, nonErrors map[int]basecount.Counter) {
	nonErrors = make(map[int]basecount.Counter)
	for pos := range ins.indices {
		s := ins.thisWindow[pos]
		if s == nil || int(s.Counter.Total()) < minReads {
			continue
		}
		sym := s.Counter.FindMax(basecount.BaseGap)
		if sym != basecount.BaseGap {
			calls = append(calls, InsertionCall{Pos: pos, Symbol: sym, Counter: s.Counter})
		} else if groundTruth.HasAction(pos, variant.ActionInsertion) {
			nonErrors[pos] = s.Counter
		}
	}
	return calls, nonErrors
}
