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

// Package basecount implements the fixed five-symbol base tally and the
// consensus rule used throughout the pileup engine.
package basecount

// Base is one of the five symbols counted at a reference position: the four
// nucleotides plus the gap symbol used for deletions and insertion anchors.
type Base byte

// The base alphabet, ordered to match both the teacher's BaseA..BaseX
// convention and ASCII alphabetical order among the four nucleotides; ties
// in FindMax resolve to the least-indexed symbol, so this ordering is what
// makes "alphabetically first" the tie-break in practice.
const (
	BaseA Base = iota
	BaseC
	BaseG
	BaseT
	BaseGap
)

// NSymbols is the size of the counted alphabet.
const NSymbols = 5

// asciiTable maps a Base to its report/CSV rendering.
var asciiTable = [NSymbols]byte{'A', 'C', 'G', 'T', '-'}

// String returns the ASCII rendering of b.
func (b Base) String() string {
	if int(b) >= NSymbols {
		return "?"
	}
	return string(asciiTable[b])
}

// symbolTable maps an input base character to its counting bucket. Anything
// not in {A,C,G,T} -- including N, '?', and lowercase variants -- maps to
// BaseGap, per the spec's "ambiguous and unknown bases count as gap" rule.
var symbolTable = buildSymbolTable()

func buildSymbolTable() [256]Base {
	var t [256]Base
	for i := range t {
		t[i] = BaseGap
	}
	t['A'] = BaseA
	t['C'] = BaseC
	t['G'] = BaseG
	t['T'] = BaseT
	t['-'] = BaseGap
	return t
}

// FromByte returns the counting bucket for an ASCII base character.
func FromByte(c byte) Base {
	return symbolTable[c]
}

// Counter is a tally of the five-symbol alphabet at one reference (or
// insertion-anchor) position.
type Counter struct {
	counts [NSymbols]uint32
}

// Increase adds one observation of sym.
func (c *Counter) Increase(sym Base) {
	c.counts[sym]++
}

// Merge adds other's counts into c elementwise.
func (c *Counter) Merge(other Counter) {
	for i := range c.counts {
		c.counts[i] += other.counts[i]
	}
}

// Reset zeroes all counts.
func (c *Counter) Reset() {
	c.counts = [NSymbols]uint32{}
}

// Count returns the tally for a single symbol.
func (c Counter) Count(sym Base) uint32 {
	return c.counts[sym]
}

// Total returns the sum of all counts.
func (c Counter) Total() uint32 {
	var total uint32
	for _, v := range c.counts {
		total += v
	}
	return total
}

// FindMax selects the consensus symbol against refBase, per the spec's
// 0.5-ratio rule:
//
//  1. winners = symbols tied for the highest count.
//  2. ratio = max / total.
//     - ratio < 0.5: return refBase (insufficient support for a call).
//     - ratio > 0.5, or a single winner: return that winner (ties broken by
//       least index, i.e. alphabetically among A,C,G,T, then gap last).
//     - ratio == 0.5 with more than one winner and refBase among them:
//       return the least-indexed winner other than refBase, to prefer the
//       mutation call on an exact tie against the reference.
//
// Insertion-context callers pass BaseGap as refBase (the "reference" at an
// insertion anchor is the absence of an inserted base); the same rule then
// naturally prefers a tied nucleotide over the gap.
func (c Counter) FindMax(refBase Base) Base {
	total := c.Total()
	if total == 0 {
		return refBase
	}
	var max uint32
	for _, v := range c.counts {
		if v > max {
			max = v
		}
	}
	var winners []Base
	for sym, v := range c.counts {
		if v == max {
			winners = append(winners, Base(sym))
		}
	}
	ratio := float64(max) / float64(total)
	switch {
	case ratio < 0.5:
		return refBase
	case ratio > 0.5 || len(winners) == 1:
		return winners[0]
	default: // ratio == 0.5, len(winners) > 1
		hasRef := false
		for _, w := range winners {
			if w == refBase {
				hasRef = true
				break
			}
		}
		if !hasRef {
			return winners[0]
		}
		for _, w := range winners {
			if w != refBase {
				return w
			}
		}
		return refBase // unreachable: len(winners) > 1 and hasRef guarantees another winner
	}
}
