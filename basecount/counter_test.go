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
package basecount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func counterOf(t *testing.T, syms ...Base) Counter {
	t.Helper()
	var c Counter
	for _, s := range syms {
		c.Increase(s)
	}
	return c
}

func TestFindMaxTieAtHalf(t *testing.T) {
	// {A:5, C:5} against ref A: tie with ref present -> non-ref winner (C).
	c := Counter{}
	for i := 0; i < 5; i++ {
		c.Increase(BaseA)
		c.Increase(BaseC)
	}
	assert.Equal(t, BaseC, c.FindMax(BaseA))

	// Same counts against ref G (absent from winners): least-indexed winner (A).
	assert.Equal(t, BaseA, c.FindMax(BaseG))
}

func TestFindMaxMajority(t *testing.T) {
	// {A:6, C:4} against ref A: ratio 0.6 > 0.5, winners = {A}.
	var c Counter
	for i := 0; i < 6; i++ {
		c.Increase(BaseA)
	}
	for i := 0; i < 4; i++ {
		c.Increase(BaseC)
	}
	assert.Equal(t, BaseA, c.FindMax(BaseA))

	// {A:4, C:6} against ref A: ratio 0.6 > 0.5 for C, winners = {C}.
	var c2 Counter
	for i := 0; i < 4; i++ {
		c2.Increase(BaseA)
	}
	for i := 0; i < 6; i++ {
		c2.Increase(BaseC)
	}
	assert.Equal(t, BaseC, c2.FindMax(BaseA))
}

func TestFindMaxNoSupport(t *testing.T) {
	// ratio < 0.5 returns the reference base unchanged.
	var c Counter
	c.Increase(BaseA)
	c.Increase(BaseC)
	c.Increase(BaseG)
	c.Increase(BaseT)
	c.Increase(BaseGap)
	assert.Equal(t, BaseT, c.FindMax(BaseT))
}

func TestFindMaxEmpty(t *testing.T) {
	var c Counter
	assert.Equal(t, BaseA, c.FindMax(BaseA))
}

func TestFindMaxInsertionContext(t *testing.T) {
	// A tie between the gap bucket and a nucleotide, queried with refBase ==
	// BaseGap (the insertion-context convention), resolves to the nucleotide.
	c := counterOf(t, BaseGap, BaseGap, BaseGap, BaseG, BaseG, BaseG)
	assert.Equal(t, BaseG, c.FindMax(BaseGap))
}

func TestMergeAndReset(t *testing.T) {
	a := counterOf(t, BaseA, BaseA, BaseC)
	b := counterOf(t, BaseC, BaseG)
	a.Merge(b)
	assert.Equal(t, uint32(2), a.Count(BaseA))
	assert.Equal(t, uint32(2), a.Count(BaseC))
	assert.Equal(t, uint32(1), a.Count(BaseG))
	assert.Equal(t, uint32(5), a.Total())

	a.Reset()
	assert.Equal(t, uint32(0), a.Total())
}

func TestFromByte(t *testing.T) {
	assert.Equal(t, BaseA, FromByte('A'))
	assert.Equal(t, BaseT, FromByte('T'))
	assert.Equal(t, BaseGap, FromByte('N'))
	assert.Equal(t, BaseGap, FromByte('?'))
	assert.Equal(t, BaseGap, FromByte('-'))
}
