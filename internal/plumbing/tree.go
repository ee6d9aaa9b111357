package plumbing

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	treeEntryFormatNameConstant     = "tree entry"
	treeEntryMetadataFieldsConstant = 4
	treePathSeparatorConstant       = "\t"
	modeFieldNameConstant           = "mode"
	octalBaseConstant               = 8
	executableBitsMaskConstant      = 0o111
)

// TreeEntry is one record of `git ls-tree -l -z`. Size is -1 for trees and submodules.
type TreeEntry struct {
	Mode       string `yaml:"mode"`
	ObjectType string `yaml:"object_type"`
	ObjectName string `yaml:"object_name"`
	Size       int64  `yaml:"size"`
	Path       string `yaml:"path"`
}

// ParseTreeEntries parses `git ls-tree -l -z` output: "<mode> <type> <object> <size>\t<path>\0".
func ParseTreeEntries(raw []byte) ([]TreeEntry, error) {
	records := splitNULFields(raw)
	entries := make([]TreeEntry, 0, len(records))
	for record, line := range records {
		metadata, path, found := strings.Cut(line, treePathSeparatorConstant)
		if !found {
			return nil, RecordError{Format: treeEntryFormatNameConstant, Record: record, Reason: fmt.Sprintf(missingSeparatorTemplateConstant, "path")}
		}
		fields := strings.Fields(metadata)
		if len(fields) != treeEntryMetadataFieldsConstant {
			return nil, arityError(treeEntryFormatNameConstant, record, treeEntryMetadataFieldsConstant, len(fields))
		}
		size, sizeError := parseObjectSize(treeEntryFormatNameConstant, record, fields[3])
		if sizeError != nil {
			return nil, sizeError
		}
		entries = append(entries, TreeEntry{
			Mode:       fields[0],
			ObjectType: fields[1],
			ObjectName: fields[2],
			Size:       size,
			Path:       path,
		})
	}
	return entries, nil
}

// HasExecutableBit reports whether an octal git file mode such as "100755" grants execute
// permission to anyone.
func HasExecutableBit(mode string) (bool, error) {
	permissions, parseError := strconv.ParseUint(strings.TrimSpace(mode), octalBaseConstant, 32)
	if parseError != nil {
		return false, RecordError{Format: treeEntryFormatNameConstant, Reason: fmt.Sprintf(invalidNumberTemplateConstant, modeFieldNameConstant, mode)}
	}
	return permissions&executableBitsMaskConstant != 0, nil
}
