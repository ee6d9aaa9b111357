package plumbing

import (
	"fmt"
	"strconv"
)

// Formats passed to `git ls-files -z --format=...`. Every field is NUL separated so paths
// containing newlines or tabs survive intact.
const (
	IndexEntryFormat         = "%(objectmode)%x00%(objectname)%x00%(stage)%x00%(path)"
	ExtendedIndexEntryFormat = "%(objectmode)%x00%(objecttype)%x00%(objectname)%x00%(objectsize)%x00%(stage)%x00%(path)"
)

const (
	indexEntryFormatNameConstant         = "index entry"
	extendedIndexEntryFormatNameConstant = "extended index entry"
	indexEntryFieldCountConstant         = 4
	extendedIndexEntryFieldCountConstant = 6
	unknownObjectSizeConstant            = "-"
	stageFieldNameConstant               = "stage"
	objectSizeFieldNameConstant          = "object size"
)

// WorkingTreeEntry describes one path recorded in the index. ObjectType and ObjectSize are only
// populated by ParseExtendedIndexEntries; ObjectSize is -1 when git reports no size.
type WorkingTreeEntry struct {
	Mode       string `yaml:"mode"`
	ObjectType string `yaml:"object_type,omitempty"`
	ObjectName string `yaml:"object_name"`
	ObjectSize int64  `yaml:"object_size,omitempty"`
	Stage      int    `yaml:"stage"`
	Path       string `yaml:"path"`
}

// ParseIndexEntries parses output produced with IndexEntryFormat.
func ParseIndexEntries(raw []byte) ([]WorkingTreeEntry, error) {
	fields := splitNULFields(raw)
	if len(fields)%indexEntryFieldCountConstant != 0 {
		return nil, arityError(indexEntryFormatNameConstant, len(fields)/indexEntryFieldCountConstant, indexEntryFieldCountConstant, len(fields)%indexEntryFieldCountConstant)
	}

	entries := make([]WorkingTreeEntry, 0, len(fields)/indexEntryFieldCountConstant)
	for offset := 0; offset < len(fields); offset += indexEntryFieldCountConstant {
		record := offset / indexEntryFieldCountConstant
		stage, stageError := parseStage(indexEntryFormatNameConstant, record, fields[offset+2])
		if stageError != nil {
			return nil, stageError
		}
		entries = append(entries, WorkingTreeEntry{
			Mode:       fields[offset],
			ObjectName: fields[offset+1],
			Stage:      stage,
			Path:       fields[offset+3],
		})
	}
	return entries, nil
}

// ParseExtendedIndexEntries parses output produced with ExtendedIndexEntryFormat.
func ParseExtendedIndexEntries(raw []byte) ([]WorkingTreeEntry, error) {
	fields := splitNULFields(raw)
	if len(fields)%extendedIndexEntryFieldCountConstant != 0 {
		return nil, arityError(extendedIndexEntryFormatNameConstant, len(fields)/extendedIndexEntryFieldCountConstant, extendedIndexEntryFieldCountConstant, len(fields)%extendedIndexEntryFieldCountConstant)
	}

	entries := make([]WorkingTreeEntry, 0, len(fields)/extendedIndexEntryFieldCountConstant)
	for offset := 0; offset < len(fields); offset += extendedIndexEntryFieldCountConstant {
		record := offset / extendedIndexEntryFieldCountConstant
		objectSize, sizeError := parseObjectSize(extendedIndexEntryFormatNameConstant, record, fields[offset+3])
		if sizeError != nil {
			return nil, sizeError
		}
		stage, stageError := parseStage(extendedIndexEntryFormatNameConstant, record, fields[offset+4])
		if stageError != nil {
			return nil, stageError
		}
		entries = append(entries, WorkingTreeEntry{
			Mode:       fields[offset],
			ObjectType: fields[offset+1],
			ObjectName: fields[offset+2],
			ObjectSize: objectSize,
			Stage:      stage,
			Path:       fields[offset+5],
		})
	}
	return entries, nil
}

func parseStage(format string, record int, value string) (int, error) {
	stage, parseError := strconv.Atoi(value)
	if parseError != nil || stage < 0 || stage > 3 {
		return 0, RecordError{Format: format, Record: record, Reason: fmt.Sprintf(invalidNumberTemplateConstant, stageFieldNameConstant, value)}
	}
	return stage, nil
}

func parseObjectSize(format string, record int, value string) (int64, error) {
	if value == unknownObjectSizeConstant {
		return -1, nil
	}
	size, parseError := strconv.ParseInt(value, 10, 64)
	if parseError != nil || size < 0 {
		return 0, RecordError{Format: format, Record: record, Reason: fmt.Sprintf(invalidNumberTemplateConstant, objectSizeFieldNameConstant, value)}
	}
	return size, nil
}
