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

// Package pileup implements the windowed pileup engine (spec section 4.3),
// the reads cursor (4.4), and the insertion aggregator (4.5) -- together
// the core of the system.
package pileup

import (
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
	"github.com/rudyleute/detecting-mutations/encoding/align"
)

// StartingReads maps a reference position to the set of (name, sequence)
// pairs whose effective first-covered position is that one (spec section
// 3). Keying the inner set by name gives the set semantics the spec calls
// for: the same read is never recorded twice at a position.
type StartingReads map[int]map[string][]byte

func (sr StartingReads) add(pos int, seq []byte, name string) {
	byName := sr[pos]
	if byName == nil {
		byName = make(map[string][]byte)
		sr[pos] = byName
	}
	byName[name] = seq
}

// Window is the result of scanning one window: the reads starting within
// it, and the insertion evidence accumulated for it (spec section 4.3's
// (StartingReads, WindowInsertions) pair).
type Window struct {
	StartingReads StartingReads
	Insertions    *Insertions
}

// Engine is the windowed pileup engine. It owns the ResumeTable across
// calls to ScanWindow, per spec section 9 (cross-window state threaded
// explicitly rather than held in a package-level global).
type Engine struct {
	source *align.Source
	resume ResumeTable
}

// NewEngine creates an Engine reading from source.
func NewEngine(source *align.Source) *Engine {
	return &Engine{source: source, resume: make(ResumeTable)}
}

// ScanWindow implements getAlignments(source, from, to, refName,
// carriedInsertions) from spec section 4.3. carried is the previous
// window's nextWindow bucket (nil for the first window).
func (e *Engine) ScanWindow(from, to int, carried map[int]*InsertionSite) (*Window, error) {
	records, err := e.source.Query(from, to)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning window [%d,%d)", from, to)
	}
	starting := make(StartingReads)
	insertions := NewInsertions(carried)
	for i := range records {
		e.scanRecord(&records[i], from, to, starting, insertions)
	}
	return &Window{StartingReads: starting, Insertions: insertions}, nil
}

// isInsertOp and isRefConsumingOp classify the CIGAR op kinds the decoder
// leaves in a spliced/clip-stripped op list: Match-like ops (M, =, X)
// consume both reference and read; Delete-like ops (D, N) consume
// reference only and materialize as gaps in Expanded; Insert consumes read
// only.
func isInsertOp(t sam.CigarOpType) bool {
	return t == sam.CigarInsertion
}

func isRefConsumingOp(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarMatch, sam.CigarDeletion, sam.CigarSkipped, sam.CigarEqual, sam.CigarMismatch:
		return true
	default:
		return false
	}
}

// scanRecord implements the per-record algorithm of spec section 4.3,
// steps 1-5. Unmapped records are already filtered out by align.Source, so
// step 1 is a no-op here.
func (e *Engine) scanRecord(rec *align.Decoded, from, to int, starting StartingReads, insertions *Insertions) {
	cigar := rec.Cigar
	expanded := rec.Expanded
	priorSplicedOps := 0
	priorSplicedReadChars := 0
	priorConsumedWithinOp := 0
	startPos := rec.Start

	if entry, ok := e.resume[rec.Name]; ok {
		delete(e.resume, rec.Name)
		cigar = splice(cigar, entry.CigarIdx, entry.ConsumedWithinOp)
		expanded = expanded[entry.ReadCharsConsumed:]
		priorSplicedOps = entry.CigarIdx
		priorSplicedReadChars = entry.ReadCharsConsumed
		priorConsumedWithinOp = entry.ConsumedWithinOp
		startPos = from
	} else if startPos < from {
		// The previous window's responsibility: either already scanned, or
		// starts before this window entirely.
		return
	}

	// A leading Insert shifts the effective start forward by its length for
	// the StartingReads key; the insertion itself is still anchored at the
	// pre-advance position, which is where refIdx begins the walk below.
	effectiveStart := startPos
	if len(cigar) > 0 && isInsertOp(cigar[0].Type()) {
		effectiveStart = startPos + cigar[0].Len()
	}

	refIdx := startPos
	readIdx := 0
	readFrom := 0
	var projection []byte

	for opPos, co := range cigar {
		n := co.Len()
		insertOp := isInsertOp(co.Type())
		refConsuming := isRefConsumingOp(co.Type())

		if refIdx+n >= to {
			left := to - refIdx
			if insertOp {
				projection = append(projection, expanded[readFrom:readIdx]...)
				insertions.AddInsertion(refIdx, readIdx, n, left, true, expanded, rec.Name)
				readFrom = readIdx + n
				readIdx += n
				continue
			}
			// Match/Delete reaching past the window end: credit
			// absence-of-insertion coverage through `to`, flush this
			// window's share of the projection so the cursor can start
			// scanning it immediately, save a resume entry, and stop
			// processing this record for this window. The remainder
			// resumes as its own segment, anchored at `from`, when the
			// next window is scanned.
			insertions.AddInsertion(refIdx, readIdx, left, left, false, expanded, rec.Name)
			projection = append(projection, expanded[readFrom:readIdx+left]...)
			starting.add(effectiveStart, projection, rec.Name)
			consumedWithinOp := left
			if opPos == 0 {
				// The head op was already shortened by splice; earlier
				// windows' share of it counts toward the total consumed.
				consumedWithinOp += priorConsumedWithinOp
			}
			e.resume[rec.Name] = ResumeEntry{
				CigarIdx:          opPos + priorSplicedOps,
				ConsumedWithinOp:  consumedWithinOp,
				ReadCharsConsumed: readIdx + left + priorSplicedReadChars,
			}
			return
		}

		if insertOp {
			projection = append(projection, expanded[readFrom:readIdx]...)
			insertions.AddInsertion(refIdx, readIdx, n, n, true, expanded, rec.Name)
			readFrom = readIdx + n
			readIdx += n
			continue
		}
		insertions.AddInsertion(refIdx, readIdx, n, n, false, expanded, rec.Name)
		readIdx += n
		if refConsuming {
			refIdx += n
		}
	}

	projection = append(projection, expanded[readFrom:readIdx]...)
	starting.add(effectiveStart, projection, rec.Name)
}
