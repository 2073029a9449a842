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
	"testing"

	"github.com/rudyleute/detecting-mutations/basecount"
	"github.com/rudyleute/detecting-mutations/variant"
	"github.com/stretchr/testify/assert"
)

// TestCursorSubstitutionCall covers scenario E1: reference AAAACAAAA with
// three reads of AAAAGAAAA starting at 0, minReads=3, must call (4, G, X)
// and nothing else.
func TestCursorSubstitutionCall(t *testing.T) {
	ref := "AAAACAAAA"
	c := NewCursor(3)
	starting := map[string][]byte{
		"r0": []byte("AAAAGAAAA"),
		"r1": []byte("AAAAGAAAA"),
		"r2": []byte("AAAAGAAAA"),
	}
	nonErrors := make(map[int]basecount.Counter)

	var calls []*PositionCall
	for pos := 0; pos < len(ref); pos++ {
		var atPos map[string][]byte
		if pos == 0 {
			atPos = starting
		}
		if call := c.Step(pos, ref[pos], atPos, false, nonErrors); call != nil {
			calls = append(calls, call)
		}
	}

	if assert.Len(t, calls, 1) {
		assert.Equal(t, 4, calls[0].Pos)
		assert.Equal(t, basecount.BaseG, calls[0].Symbol)
		assert.Equal(t, variant.ActionSubstitution, calls[0].Action)
	}
}

// TestCursorUnderCoverageEmitsNothing covers the minReads threshold: with
// only two live reads against a minReads of 3, no call is ever emitted even
// though the reads disagree with the reference.
func TestCursorUnderCoverageEmitsNothing(t *testing.T) {
	c := NewCursor(3)
	starting := map[string][]byte{
		"r0": []byte("GG"),
		"r1": []byte("GG"),
	}
	nonErrors := make(map[int]basecount.Counter)

	for pos := 0; pos < 2; pos++ {
		var atPos map[string][]byte
		if pos == 0 {
			atPos = starting
		}
		call := c.Step(pos, 'A', atPos, false, nonErrors)
		assert.Nil(t, call)
	}
}

// TestCursorDropsFinishedReadWithoutDoubleCounting covers invariant 1: a
// read must stop contributing the instant it reaches its EndPos, and never
// contribute to a position twice.
func TestCursorDropsFinishedReadWithoutDoubleCounting(t *testing.T) {
	c := NewCursor(1)
	nonErrors := make(map[int]basecount.Counter)

	call := c.Step(0, 'A', map[string][]byte{"r0": []byte("AA")}, false, nonErrors)
	assert.Nil(t, call)
	assert.Len(t, c.live, 1)

	call = c.Step(1, 'A', nil, false, nonErrors)
	assert.Nil(t, call)
	assert.Empty(t, c.live)
}
