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
package refio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFasta(t *testing.T, contents string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.fa")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReaderSkipsHeaderAndBlankLines(t *testing.T) {
	path := writeFasta(t, ">chr1 test\nACGT\n\nGGCC\n")
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	line, err := r.NextLine()
	require.NoError(t, err)
	assert.Equal(t, "ACGT", line)

	line, err = r.NextLine()
	require.NoError(t, err)
	assert.Equal(t, "GGCC", line)

	_, err = r.NextLine()
	assert.Equal(t, io.EOF, err)
}

// TestReaderLineLengthMeasuresActualWidthAndDoesNotConsume covers the
// WINDOW_SIZE derivation: LineLength must measure the reference's real wrap
// width (70 here, not the 80-wide default) and still hand the measured line
// back to the first NextLine call.
func TestReaderLineLengthMeasuresActualWidthAndDoesNotConsume(t *testing.T) {
	line70 := ""
	for i := 0; i < 70; i++ {
		line70 += "A"
	}
	path := writeFasta(t, ">chr1\n"+line70+"\n"+line70+"\n")
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	length, err := r.LineLength()
	require.NoError(t, err)
	assert.Equal(t, 70, length)

	// LineLength is idempotent and does not drop the peeked line.
	length, err = r.LineLength()
	require.NoError(t, err)
	assert.Equal(t, 70, length)

	line, err := r.NextLine()
	require.NoError(t, err)
	assert.Equal(t, line70, line)

	line, err = r.NextLine()
	require.NoError(t, err)
	assert.Equal(t, line70, line)

	_, err = r.NextLine()
	assert.Equal(t, io.EOF, err)
}

// TestReaderLineLengthOnEmptyReference covers the no-sequence-lines fallback.
func TestReaderLineLengthOnEmptyReference(t *testing.T) {
	path := writeFasta(t, ">chr1 header only\n")
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.LineLength()
	assert.Equal(t, io.EOF, err)
}

func TestReaderMultiHeaderFile(t *testing.T) {
	path := writeFasta(t, ">chr1\nAAAA\n>chr2\nTTTT\n")
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var lines []string
	for {
		line, err := r.NextLine()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"AAAA", "TTTT"}, lines)
}
