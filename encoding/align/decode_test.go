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
package align

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packSeq(bases string) ([]byte, int) {
	code := map[byte]byte{'A': 1, 'C': 2, 'G': 4, 'T': 8, 'N': 15}
	packed := make([]byte, (len(bases)+1)/2)
	for i := 0; i < len(bases); i++ {
		n := code[bases[i]]
		if i%2 == 0 {
			packed[i/2] = n << 4
		} else {
			packed[i/2] |= n
		}
	}
	return packed, len(bases)
}

func newRecord(t *testing.T, name string, pos int, cigarStr string, bases string) *sam.Record {
	t.Helper()
	cigar, err := sam.ParseCigar([]byte(cigarStr))
	require.NoError(t, err)
	packed, n := packSeq(bases)
	return &sam.Record{
		Name:  name,
		Pos:   pos,
		Cigar: cigar,
		Seq:   sam.Seq{Length: n, Seq: packed},
	}
}

func TestDecodeMatchOnly(t *testing.T) {
	rec := newRecord(t, "r1", 0, "9M", "AAAAGAAAA")
	d := Decode(rec)
	assert.Equal(t, "AAAAGAAAA", string(d.Expanded))
	assert.Equal(t, 0, d.Start)
}

func TestDecodeDeletionMaterializesGaps(t *testing.T) {
	// 3M1D4M over read ACGACGT: positions 0-2 match, ref position 3 deleted,
	// positions 4-7 match the remaining read bases.
	rec := newRecord(t, "r2", 0, "3M1D4M", "ACGACGT")
	d := Decode(rec)
	assert.Equal(t, "ACG-ACGT", string(d.Expanded))
}

func TestDecodeInsertionKeptInExpanded(t *testing.T) {
	rec := newRecord(t, "r3", 0, "4M2I4M", "ACGTGGACGT")
	d := Decode(rec)
	assert.Equal(t, "ACGTGGACGT", string(d.Expanded))
}

func TestDecodeStripsClips(t *testing.T) {
	rec := newRecord(t, "r4", 10, "2S5M3S", "NNAAAAANNN")
	d := Decode(rec)
	assert.Equal(t, "AAAAA", string(d.Expanded))
	require.Len(t, d.Cigar, 1)
	assert.Equal(t, sam.CigarMatch, d.Cigar[0].Type())
}
