package plumbing

import "strings"

const nulSeparatorConstant = "\x00"

// splitNULFields splits NUL-terminated output into fields, dropping the empty element left by
// the final terminator.
func splitNULFields(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	fields := strings.Split(string(raw), nulSeparatorConstant)
	if fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// ParseNULList returns the non-empty entries of NUL-separated output such as
// `ls-files -z --others`.
func ParseNULList(raw []byte) []string {
	entries := make([]string, 0)
	for _, field := range splitNULFields(raw) {
		if len(field) == 0 {
			continue
		}
		entries = append(entries, field)
	}
	return entries
}
