package plumbing

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	statusFormatNameConstant           = "status"
	statusHeaderLengthConstant         = 3
	statusRenamedCodeConstant          = 'R'
	statusCopiedCodeConstant           = 'C'
	nestedRepositorySuffixConstant     = "/"
	truncatedStatusReasonConstant      = "truncated record"
	statusHeaderReasonTemplateConstant = "invalid status header %q"
)

// FileStatus is one tracked path from `git status -z`. X and Y are the index and worktree
// status codes; OriginalPath is set for renames and copies.
type FileStatus struct {
	X            string `yaml:"x"`
	Y            string `yaml:"y"`
	Path         string `yaml:"path"`
	OriginalPath string `yaml:"original_path,omitempty"`
}

// StatusParser incrementally parses `git status -z` short-format output written to it in
// arbitrary chunks. Entries whose path ends in "/" denote nested repositories and are skipped.
type StatusParser struct {
	pending []byte
	entries []FileStatus
	records int
	failure error
}

// NewStatusParser creates an empty parser.
func NewStatusParser() *StatusParser {
	return &StatusParser{}
}

// Write consumes a chunk of status output. Complete records are parsed immediately; a partial
// trailing record is kept until the next chunk.
func (parser *StatusParser) Write(chunk []byte) (int, error) {
	if parser.failure != nil {
		return 0, parser.failure
	}
	parser.pending = append(parser.pending, chunk...)

	consumed := 0
	for {
		advance, entry, parseError := parser.parseEntry(parser.pending[consumed:])
		if parseError != nil {
			parser.failure = parseError
			return 0, parseError
		}
		if advance == 0 {
			break
		}
		consumed += advance
		parser.records++
		if entry != nil {
			parser.entries = append(parser.entries, *entry)
		}
	}
	parser.pending = append(parser.pending[:0], parser.pending[consumed:]...)
	return len(chunk), nil
}

// Close reports a RecordError when output ended inside a record.
func (parser *StatusParser) Close() error {
	if parser.failure != nil {
		return parser.failure
	}
	if len(parser.pending) > 0 {
		parser.failure = RecordError{Format: statusFormatNameConstant, Record: parser.records, Reason: truncatedStatusReasonConstant}
		return parser.failure
	}
	return nil
}

// Entries returns the statuses parsed so far.
func (parser *StatusParser) Entries() []FileStatus {
	return append([]FileStatus{}, parser.entries...)
}

// parseEntry returns the number of bytes of data forming the first complete record, or zero
// when the record is incomplete. A nil entry with a positive advance is a skipped record.
func (parser *StatusParser) parseEntry(data []byte) (int, *FileStatus, error) {
	if len(data) <= statusHeaderLengthConstant {
		return 0, nil, nil
	}
	if data[2] != ' ' {
		return 0, nil, RecordError{Format: statusFormatNameConstant, Record: parser.records, Reason: fmt.Sprintf(statusHeaderReasonTemplateConstant, string(data[:statusHeaderLengthConstant]))}
	}

	entry := FileStatus{X: string(data[0]), Y: string(data[1])}
	cursor := statusHeaderLengthConstant

	pathEnd := bytes.IndexByte(data[cursor:], 0)
	if pathEnd == -1 {
		return 0, nil, nil
	}
	entry.Path = string(data[cursor : cursor+pathEnd])
	cursor += pathEnd + 1

	if data[0] == statusRenamedCodeConstant || data[0] == statusCopiedCodeConstant {
		originalEnd := bytes.IndexByte(data[cursor:], 0)
		if originalEnd == -1 {
			return 0, nil, nil
		}
		entry.OriginalPath = string(data[cursor : cursor+originalEnd])
		cursor += originalEnd + 1
	}

	if strings.HasSuffix(entry.Path, nestedRepositorySuffixConstant) {
		return cursor, nil, nil
	}
	return cursor, &entry, nil
}
