// Package linestream turns a byte stream into a pull-based sequence of text lines.
package linestream

import (
	"bufio"
	"bytes"
	"io"
	"iter"
)

// MaximumLineSize bounds a single line; longer lines fail with bufio.ErrTooLong.
const MaximumLineSize = 16 * 1024 * 1024

const (
	initialBufferSizeConstant = 64 * 1024
	lineTerminatorsConstant   = "\r\n"
	lineFeedConstant          = '\n'
)

// LineReader yields the non-empty lines of an underlying reader. Lines end at LF, CR or CRLF.
// The reader pulls from its source only when the next line is requested.
type LineReader struct {
	scanner *bufio.Scanner
}

// NewLineReader wraps source.
func NewLineReader(source io.Reader) *LineReader {
	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, initialBufferSizeConstant), MaximumLineSize)
	scanner.Split(ScanTerminatedLines)
	return &LineReader{scanner: scanner}
}

// Next returns the next non-empty line. It reports false at end of input or on a read error.
func (reader *LineReader) Next() (string, bool) {
	for reader.scanner.Scan() {
		line := reader.scanner.Text()
		if len(line) == 0 {
			continue
		}
		return line, true
	}
	return "", false
}

// Err returns the first read error encountered, excluding io.EOF.
func (reader *LineReader) Err() error {
	return reader.scanner.Err()
}

// All returns an iterator over the remaining lines.
func (reader *LineReader) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			line, ok := reader.Next()
			if !ok || !yield(line) {
				return
			}
		}
	}
}

// Collect reads every non-empty line of source.
func Collect(source io.Reader) ([]string, error) {
	reader := NewLineReader(source)
	lines := []string{}
	for line := range reader.All() {
		lines = append(lines, line)
	}
	return lines, reader.Err()
}

// ScanTerminatedLines is a bufio.SplitFunc that splits on LF, CR or CRLF. A CR at the end of the
// buffered data is held back until more data or end of input shows whether an LF follows.
func ScanTerminatedLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	terminatorIndex := bytes.IndexAny(data, lineTerminatorsConstant)
	if terminatorIndex < 0 {
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}

	if data[terminatorIndex] == lineFeedConstant {
		return terminatorIndex + 1, data[:terminatorIndex], nil
	}

	if terminatorIndex+1 < len(data) {
		if data[terminatorIndex+1] == lineFeedConstant {
			return terminatorIndex + 2, data[:terminatorIndex], nil
		}
		return terminatorIndex + 1, data[:terminatorIndex], nil
	}

	if atEOF {
		return terminatorIndex + 1, data[:terminatorIndex], nil
	}
	return 0, nil, nil
}
