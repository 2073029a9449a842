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

// Package variant holds the candidate and ground-truth variant record
// types (spec section 3), the ground-truth VCF normalization (section 6),
// and the comparator (section 4.6).
package variant

import "github.com/rudyleute/detecting-mutations/basecount"

// Action is the kind of call recorded at a position.
type Action byte

const (
	// ActionSubstitution is a single-base substitution call.
	ActionSubstitution Action = 'X'
	// ActionDeletion is a single-base deletion call.
	ActionDeletion Action = 'D'
	// ActionInsertion is a single-base insertion call, anchored just after
	// the reference position it follows.
	ActionInsertion Action = 'I'
	// ActionComplex marks a multi-base ground-truth change this system
	// does not attempt to characterize further (spec section 6's "Δ >= 2"
	// rule).
	ActionComplex Action = 'C'
)

// CandidateEntry is one call this system derived from the pileup, with the
// base-count evidence that produced it.
type CandidateEntry struct {
	Symbol  basecount.Base
	Action  Action
	Counter basecount.Counter
}

// CandidateMap accumulates CandidateEntry values by reference position. A
// position may carry more than one entry (e.g. both an insertion and a
// substitution anchored at the same position).
type CandidateMap map[int][]CandidateEntry

// Add appends an entry at pos.
func (m CandidateMap) Add(pos int, entry CandidateEntry) {
	m[pos] = append(m[pos], entry)
}

// GroundTruthEntry is one normalized ground-truth call. Symbol is the raw
// ASCII byte from the normalization rules in spec section 6 -- it is not
// restricted to the five-symbol pileup alphabet, since the "complex change"
// marker 'U' and a mis-XORed insertion byte (see Open Questions) can fall
// outside it.
type GroundTruthEntry struct {
	Symbol byte
	Action Action
}
