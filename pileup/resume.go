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
	"github.com/grailbio/hts/sam"
)

// ResumeEntry carries the state needed to continue scanning a read in the
// window after the one in which it was interrupted: which CIGAR operation
// to resume at, how much of that operation was already consumed, and how
// many expanded-read characters were already consumed.
type ResumeEntry struct {
	CigarIdx          int
	ConsumedWithinOp  int
	ReadCharsConsumed int
}

// ResumeTable maps a read name to its saved ResumeEntry. It is owned by the
// Engine and threaded window-to-window as an explicit field rather than a
// package-level variable, per spec section 9's note that cross-window state
// is transferred by value through the orchestrator.
type ResumeTable map[string]ResumeEntry

// splice drops the CIGAR ops before idx and shortens the op at idx by
// consumedWithinOp, returning a CIGAR ready to resume scanning from the
// window boundary. idx and consumedWithinOp are both measured against the
// record's full, unspliced CIGAR.
func splice(cigar sam.Cigar, idx, consumedWithinOp int) sam.Cigar {
	remaining := cigar[idx:]
	if consumedWithinOp == 0 || len(remaining) == 0 {
		return remaining
	}
	head := remaining[0]
	newLen := head.Len() - consumedWithinOp
	spliced := make(sam.Cigar, len(remaining))
	spliced[0] = sam.NewCigarOp(head.Type(), newLen)
	copy(spliced[1:], remaining[1:])
	return spliced
}
