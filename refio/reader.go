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

// Package refio reads a FASTA reference sequentially, one line at a time.
// Unlike encoding/fasta's random-access, fully indexed Fasta interface, this
// reader never holds the whole sequence in memory: the orchestrator pulls
// exactly as many lines as one window needs and then stops, per spec
// section 5's bounded-memory requirement.
package refio

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// DefaultLineLength is the fallback FASTA line width used only when a
// reference has no sequence lines to measure (spec section 4.7's
// WINDOW_SIZE = FASTA_LINE_LEN * LINES_IN_WINDOW used a hardcoded 80; this
// reader measures the real wrap width off the file instead via LineLength,
// since not every reference wraps at 80).
const DefaultLineLength = 80

// Reader streams sequence lines out of a FASTA file, skipping header lines
// (">...") and blank lines, the same filter original_source's getRefGen
// applies while concatenating the whole file into one string.
type Reader struct {
	f       *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	pending *string
}

// Open opens path, transparently decompressing it if it is gzipped (sniffed
// by magic bytes, not by extension, since callers may pass either
// reference.fa or reference.fa.gz).
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening reference %s", path)
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, errors.Wrapf(err, "reading reference %s", path)
	}

	r := &Reader{f: f}
	var src io.Reader = br
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "reading gzip header of %s", path)
		}
		r.gz = gz
		src = gz
	}
	r.scanner = bufio.NewScanner(src)
	r.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return r, nil
}

// Close releases the underlying file (and gzip reader, if any).
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.f.Close()
}

// LineLength reads the reference's first sequence line to discover its
// actual wrap width, then buffers that line so the next NextLine call still
// returns it in order. Returns io.EOF if the reference has no sequence
// lines at all.
func (r *Reader) LineLength() (int, error) {
	if r.pending == nil {
		line, err := r.NextLine()
		if err != nil {
			return 0, err
		}
		r.pending = &line
	}
	return len(*r.pending), nil
}

// NextLine returns the next sequence line (header and blank lines skipped),
// or io.EOF once the file is exhausted.
func (r *Reader) NextLine() (string, error) {
	if r.pending != nil {
		line := *r.pending
		r.pending = nil
		return line, nil
	}
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" || line[0] == '>' {
			continue
		}
		return line, nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", errors.Wrap(err, "reading reference")
	}
	return "", io.EOF
}
