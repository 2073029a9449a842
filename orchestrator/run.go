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

// Package orchestrator drives the sliding-window scan described in spec
// section 4.7: it opens the three inputs, walks the reference genome one
// window at a time, and assembles the final comparison result.
package orchestrator

import (
	"io"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
	"github.com/rudyleute/detecting-mutations/basecount"
	"github.com/rudyleute/detecting-mutations/encoding/align"
	"github.com/rudyleute/detecting-mutations/pileup"
	"github.com/rudyleute/detecting-mutations/refio"
	"github.com/rudyleute/detecting-mutations/variant"
)

// Config holds the CLI-overridable knobs (spec section 6's "MIN_READS as a
// CLI-overridable named constant" supplement).
type Config struct {
	// MinReads is the minimum read depth required before a position (or
	// insertion anchor) is analyzed at all.
	MinReads int
	// LinesPerWindow is how many reference lines make up one scan window.
	LinesPerWindow int
}

// DefaultConfig mirrors original_source's MIN_READS=5, LINES_IN_WINDOW=1e2
// constants.
func DefaultConfig() Config {
	return Config{MinReads: 5, LinesPerWindow: 100}
}

// Run scans bamPath against refPath, compares the result to the variants in
// vcfPath, and returns the comparison.
func Run(bamPath, refPath, vcfPath string, cfg Config) (variant.Result, error) {
	source, err := align.Open(bamPath)
	if err != nil {
		return variant.Result{}, err
	}
	defer source.Close()

	ref, err := refio.Open(refPath)
	if err != nil {
		return variant.Result{}, err
	}
	defer ref.Close()

	groundTruth, err := variant.LoadGroundTruth(vcfPath)
	if err != nil {
		return variant.Result{}, err
	}

	lineLength, err := ref.LineLength()
	if err == io.EOF {
		// No sequence lines at all; fall back so the loop below still has a
		// well-defined (if moot) window size.
		lineLength = refio.DefaultLineLength
	} else if err != nil {
		return variant.Result{}, err
	}
	windowSize := lineLength * cfg.LinesPerWindow
	refLen := source.RefLen()
	log.Printf("scanning %s against %s (%d bp, window %d)", bamPath, source.RefName(), refLen, windowSize)

	engine := pileup.NewEngine(source)
	cursor := pileup.NewCursor(cfg.MinReads)
	candidates := make(variant.CandidateMap)
	nonErrors := make(map[int]basecount.Counter)

	pos := 0
	var carried map[int]*pileup.InsertionSite
	for start := 0; start < refLen; start += windowSize {
		end := start + windowSize
		win, err := engine.ScanWindow(start, end, carried)
		if err != nil {
			return variant.Result{}, errors.Wrapf(err, "scanning window [%d,%d)", start, end)
		}

		linesCovered := 0
		eof := false
		for linesCovered < cfg.LinesPerWindow {
			line, err := ref.NextLine()
			if err == io.EOF {
				eof = true
				break
			}
			if err != nil {
				return variant.Result{}, err
			}
			scanLine(cursor, win, groundTruth, nonErrors, candidates, pos, line)
			pos += len(line)
			linesCovered++
		}

		calls, insNonErrors := win.Insertions.FindInsertionMutations(cfg.MinReads, groundTruth)
		for p, c := range insNonErrors {
			nonErrors[p] = c
		}
		for _, call := range calls {
			candidates.Add(call.Pos, variant.CandidateEntry{
				Symbol:  call.Symbol,
				Action:  variant.ActionInsertion,
				Counter: call.Counter,
			})
		}
		carried = win.Insertions.NextWindow()

		if eof {
			// carried's positions all lie at or past this window's end,
			// which is >= refLen here, so there is no residual window left
			// to fold them into; dropping it is a no-op, not data loss.
			break
		}
	}

	return variant.Compare(groundTruth, candidates, nonErrors, 0, refLen), nil
}

// scanLine walks one reference line through the cursor, one position at a
// time, recording any substitution/deletion call into candidates.
func scanLine(
	cursor *pileup.Cursor,
	win *pileup.Window,
	groundTruth *variant.GroundTruth,
	nonErrors map[int]basecount.Counter,
	candidates variant.CandidateMap,
	lineStart int,
	line string,
) {
	for i := 0; i < len(line); i++ {
		curPos := lineStart + i
		starting := win.StartingReads[curPos]
		isExpected := groundTruth.HasAction(curPos, variant.ActionSubstitution) || groundTruth.HasAction(curPos, variant.ActionDeletion)

		call := cursor.Step(curPos, line[i], starting, isExpected, nonErrors)
		if call == nil {
			continue
		}
		candidates.Add(call.Pos, variant.CandidateEntry{
			Symbol:  call.Symbol,
			Action:  call.Action,
			Counter: call.Counter,
		})
	}
}
