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

// ReadCursorEntry is one read currently live in the Cursor's scan (spec
// section 3). Sequence is the insertion-free projection; Index is the next
// character to consume; EndPos is the last reference position the read
// covers.
type ReadCursorEntry struct {
	Index    int
	EndPos   int
	Sequence []byte
	Name     string
}

// PositionCall is one per-position substitution or deletion call emitted by
// the Cursor (spec section 4.4). Insertion calls come from the insertion
// aggregator instead (section 4.5).
type PositionCall struct {
	Pos     int
	Symbol  basecount.Base
	Action  variant.Action
	Counter basecount.Counter
}

// Cursor is the live list of reads currently overlapping the scan
// position (spec section 4.4).
type Cursor struct {
	live     []*ReadCursorEntry
	minReads int
}

// NewCursor creates a Cursor with the given coverage threshold.
func NewCursor(minReads int) *Cursor {
	return &Cursor{minReads: minReads}
}

// Step advances the cursor by one reference position. starting is the set
// of (name -> sequence) pairs beginning at pos this window (nil if none);
// refBase is the reference base at pos; isExpectedMutation flags that the
// ground truth has a non-insertion call at pos (used to route an
// unremarkable position into nonErrors, per spec section 4.4's final
// bullet). It returns the emitted call, or nil if the position is
// under-covered or matches the reference.
func (c *Cursor) Step(pos int, refBase byte, starting map[string][]byte, isExpectedMutation bool, nonErrors map[int]basecount.Counter) *PositionCall {
	for name, seq := range starting {
		c.live = append(c.live, &ReadCursorEntry{
			Index:    0,
			EndPos:   pos + len(seq) - 1,
			Sequence: seq,
			Name:     name,
		})
	}

	relevant := len(c.live) >= c.minReads
	var counter basecount.Counter

	live := c.live[:0]
	for _, e := range c.live {
		if relevant {
			counter.Increase(basecount.FromByte(e.Sequence[e.Index]))
		}
		if e.EndPos == pos {
			continue
		}
		e.Index++
		live = append(live, e)
	}
	c.live = live

	if !relevant {
		return nil
	}

	ref := basecount.FromByte(refBase)
	sym := counter.FindMax(ref)
	if sym == ref {
		if isExpectedMutation {
			nonErrors[pos] = counter
		}
		return nil
	}

	action := variant.ActionSubstitution
	if sym == basecount.BaseGap {
		action = variant.ActionDeletion
	}
	return &PositionCall{Pos: pos, Symbol: sym, Action: action, Counter: counter}
}
