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
package variant

import "github.com/rudyleute/detecting-mutations/basecount"

// Missed is a ground-truth call this system's candidate map does not
// contain, with whatever candidate-side evidence was available at that
// position (empty if none).
type Missed struct {
	Pos     int
	Symbol  byte
	Action  Action
	Counter basecount.Counter
}

// Additional is a candidate call with no corresponding ground-truth entry.
type Additional struct {
	Pos     int
	Symbol  basecount.Base
	Action  Action
	Counter basecount.Counter
}

// Mismatched is a position where both sides agree on the action but
// disagree on the symbol. Entries that differ in action are never paired;
// they are reported as Missed and Additional instead.
type Mismatched struct {
	Pos          int
	GroundSymbol byte
	GroundAction Action
	CandSymbol   basecount.Base
	CandAction   Action
	Counter      basecount.Counter
}

// Result is the comparator's output (spec section 3's "Comparison
// result").
type Result struct {
	Missed     []Missed
	Additional []Additional
	Mismatched []Mismatched
}

// Compare implements spec section 4.6's compare(groundTruth, candidate,
// nonErrors, from, to). Ground-truth positions are visited in ascending
// order within [from, to); candidate entries consumed by a match are
// removed so that whatever remains at the end becomes Additional. This is
// the "continue" formulation spec section 9 calls out, replacing the
// original source's early-break loop (which silently assumed sorted
// ground-truth input without enforcing it).
func Compare(groundTruth *GroundTruth, candidate CandidateMap, nonErrors map[int]basecount.Counter, from, to int) Result {
	var result Result
	consumed := make(map[int]map[int]bool) // pos -> candidate index -> removed

	markConsumed := func(pos, idx int) {
		if consumed[pos] == nil {
			consumed[pos] = make(map[int]bool)
		}
		consumed[pos][idx] = true
	}
	isConsumed := func(pos, idx int) bool {
		return consumed[pos] != nil && consumed[pos][idx]
	}

	for _, pos := range groundTruth.PositionsInRange(from, to) {
		for _, gtEntry := range groundTruth.Entries(pos) {
			entries := candidate[pos]

			matchIdx := -1
			actionOnlyIdx := -1
			for i, ce := range entries {
				if isConsumed(pos, i) {
					continue
				}
				if byte(ce.Action) == byte(gtEntry.Action) {
					if ce.Symbol.String() == string(gtEntry.Symbol) {
						matchIdx = i
						break
					}
					if actionOnlyIdx == -1 {
						actionOnlyIdx = i
					}
				}
			}

			switch {
			case matchIdx >= 0:
				markConsumed(pos, matchIdx)
			case actionOnlyIdx >= 0:
				ce := entries[actionOnlyIdx]
				markConsumed(pos, actionOnlyIdx)
				result.Mismatched = append(result.Mismatched, Mismatched{
					Pos:          pos,
					GroundSymbol: gtEntry.Symbol,
					GroundAction: gtEntry.Action,
					CandSymbol:   ce.Symbol,
					CandAction:   ce.Action,
					Counter:      ce.Counter,
				})
			default:
				result.Missed = append(result.Missed, Missed{
					Pos:     pos,
					Symbol:  gtEntry.Symbol,
					Action:  gtEntry.Action,
					Counter: nonErrors[pos],
				})
			}
		}
	}

	// Remaining candidate entries at ground-truth positions, plus every
	// entry at candidate-only positions, are Additional.
	for pos, entries := range candidate {
		if pos < from || pos >= to {
			continue
		}
		for i, ce := range entries {
			if isConsumed(pos, i) {
				continue
			}
			result.Additional = append(result.Additional, Additional{
				Pos:     pos,
				Symbol:  ce.Symbol,
				Action:  ce.Action,
				Counter: ce.Counter,
			})
		}
	}

	return result
}
