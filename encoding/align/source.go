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
	"os"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// Source is a coordinate-indexed BAM file: the binary alignment input
// described in spec section 6. It wraps a single reference contig -- this
// system never processes more than one, per the non-goals in section 1.
type Source struct {
	path    string
	bamFile *os.File
	reader  *bam.Reader
	index   *bam.Index
	ref     *sam.Reference
}

// Open opens a BAM file and its companion .bai index. The index path is
// bamPath + ".bai".
func Open(bamPath string) (*Source, error) {
	f, err := os.Open(bamPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening alignment file %s", bamPath)
	}
	reader, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading BAM header from %s", bamPath)
	}
	idxFile, err := os.Open(bamPath + ".bai")
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening BAM index %s.bai", bamPath)
	}
	defer idxFile.Close()
	index, err := bam.ReadIndex(idxFile)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading BAM index %s.bai", bamPath)
	}

	refs := reader.Header().Refs()
	if len(refs) == 0 {
		f.Close()
		return nil, errors.Errorf("%s: no reference contigs in BAM header", bamPath)
	}
	// Single-contig system (spec section 1 non-goals): the first reference
	// in the header is the one the reads are aligned against.
	ref := refs[0]

	return &Source{path: bamPath, bamFile: f, reader: reader, index: index, ref: ref}, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.bamFile.Close()
}

// RefName returns the name of the (single) reference contig.
func (s *Source) RefName() string {
	return s.ref.Name()
}

// RefLen returns the length of the reference contig, as recorded in the BAM
// header.
func (s *Source) RefLen() int {
	return s.ref.Len()
}

// Query returns the decoded, mapped records whose alignment overlaps
// [from, to) on the single reference contig. Unmapped records are filtered
// out here rather than in the decoder, per spec section 4.2's division of
// responsibility ("Records with the unmapped flag are filtered by the
// engine, not the decoder").
func (s *Source) Query(from, to int) ([]Decoded, error) {
	chunks, err := s.index.Chunks(s.ref, from, to)
	if err != nil {
		return nil, errors.Wrapf(err, "querying index for %s:%d-%d", s.ref.Name(), from, to)
	}
	it, err := bam.NewIterator(s.reader, chunks)
	if err != nil {
		return nil, errors.Wrapf(err, "iterating %s:%d-%d", s.ref.Name(), from, to)
	}
	defer it.Close()

	var out []Decoded
	for it.Next() {
		rec := it.Record()
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		// .bai chunks cover whole bgzf blocks at coarse bin granularity, so
		// the iterator routinely yields records outside [from, to); the
		// engine's op walk assumes every record it sees starts before to, so
		// filter precisely here rather than leave it to the caller.
		span, _ := rec.Cigar.Lengths()
		if rec.Pos+span <= from || rec.Pos >= to {
			continue
		}
		out = append(out, Decode(rec))
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(err, "reading records from %s", s.path)
	}
	return out, nil
}
