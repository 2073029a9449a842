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

// Package align decodes sam.Record alignments into the gap-expanded read
// form the pileup engine scans, and provides a sequential, index-backed
// iterator over a BAM file's records for a reference coordinate range.
package align

import (
	"github.com/grailbio/hts/sam"
)

// seq8ToASCII is the .bam seq nibble -> ASCII table (1=A, 2=C, 4=G, 8=T,
// 15=N, everything else an IUPAC ambiguity code we don't distinguish).
// Index order matches the BAM spec's 4-bit base encoding.
var seq8ToASCII = [...]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'}

// decodeSeq unpacks a sam.Record's 4-bit-packed Seq into one ASCII byte per
// read position. Nibble 15 decodes to 'N', nibble 0 ('=') decodes to '?',
// and the other ambiguity nibbles decode to their IUPAC letter; the engine
// folds every byte outside A/C/G/T to gap anyway.
func decodeSeq(length int, packed []byte) []byte {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		b := packed[i/2]
		var nibble byte
		if i%2 == 0 {
			nibble = b >> 4
		} else {
			nibble = b & 0xf
		}
		c := seq8ToASCII[nibble]
		if c == '=' {
			c = '?'
		}
		out[i] = c
	}
	return out
}

// Decoded is one alignment record reduced to the form the pileup engine
// needs: a 0-based reference start, the query name, a CIGAR with leading and
// trailing clip operations already stripped, and the "expanded read" -- the
// read's bases with every Delete operation materializing as that many gap
// bytes ('-'), Insert and Match operations contributing their read bases
// verbatim, and clips removed entirely. Because clips are stripped up front,
// every remaining op advances readIdx into Expanded by exactly its Len(),
// regardless of whether it also advances the reference.
type Decoded struct {
	Start    int
	Name     string
	Cigar    sam.Cigar
	Expanded []byte
}

// Decode reduces rec to its Decoded form. It never fails: unrecognized CIGAR
// operations are simply skipped over (the spec's decoder never throws on
// unknown ops), and bases decode as described on decodeSeq. Callers are expected
// to have already filtered out unmapped records; Decode does not look at
// rec.Flags.
func Decode(rec *sam.Record) Decoded {
	cigar, leadingClip := stripClips(rec.Cigar)
	bases := decodeSeq(rec.Seq.Length, rec.Seq.Seq)

	expanded := make([]byte, 0, len(bases)+8)
	readIdx := leadingClip
	for _, co := range cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarDeletion, sam.CigarSkipped:
			for i := 0; i < n; i++ {
				expanded = append(expanded, '-')
			}
		case sam.CigarMatch, sam.CigarInsertion, sam.CigarEqual, sam.CigarMismatch:
			expanded = append(expanded, bases[readIdx:readIdx+n]...)
			readIdx += n
		default:
			// Unknown/unexpected op: neither reference- nor read-consuming
			// here, so there is nothing to append or advance.
		}
	}

	return Decoded{
		Start:    rec.Pos,
		Name:     rec.Name,
		Cigar:    cigar,
		Expanded: expanded,
	}
}

// stripClips drops leading and trailing SoftClipped/HardClipped operations.
// Per the BAM spec clips only ever appear at the ends of a CIGAR string, so
// a single pass from each end suffices. It also returns the number of read
// bases consumed by the leading clip run (SoftClipped only -- HardClipped
// bases are absent from Seq entirely), so callers can offset into the
// decoded base array accordingly.
func stripClips(cigar sam.Cigar) (out sam.Cigar, leadingReadBases int) {
	start := 0
	for start < len(cigar) && isClip(cigar[start].Type()) {
		if cigar[start].Type() == sam.CigarSoftClipped {
			leadingReadBases += cigar[start].Len()
		}
		start++
	}
	end := len(cigar)
	for end > start && isClip(cigar[end-1].Type()) {
		end--
	}
	return cigar[start:end], leadingReadBases
}

func isClip(t sam.CigarOpType) bool {
	return t == sam.CigarSoftClipped || t == sam.CigarHardClipped
}
