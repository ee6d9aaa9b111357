package plumbing

import "strings"

const (
	ignoreCheckFormatNameConstant = "ignore check"
	ignoreCheckFieldCountConstant = 4
	negatedPatternPrefixConstant  = "!"
)

// IgnoreMatch is one `git check-ignore -v -z` record: the file defining the matching pattern,
// the pattern's line number, the pattern and the checked path.
type IgnoreMatch struct {
	Source  string `yaml:"source"`
	Line    string `yaml:"line"`
	Pattern string `yaml:"pattern"`
	Path    string `yaml:"path"`
}

// ParseIgnoreCheck parses `git check-ignore -v -z` output and keeps only paths that are actually
// ignored. Records matched by a negated pattern or by no pattern at all are dropped.
func ParseIgnoreCheck(raw []byte) ([]IgnoreMatch, error) {
	fields := splitNULFields(raw)
	if len(fields)%ignoreCheckFieldCountConstant != 0 {
		return nil, arityError(ignoreCheckFormatNameConstant, len(fields)/ignoreCheckFieldCountConstant, ignoreCheckFieldCountConstant, len(fields)%ignoreCheckFieldCountConstant)
	}

	matches := make([]IgnoreMatch, 0, len(fields)/ignoreCheckFieldCountConstant)
	for offset := 0; offset < len(fields); offset += ignoreCheckFieldCountConstant {
		pattern := fields[offset+2]
		if len(pattern) == 0 || strings.HasPrefix(pattern, negatedPatternPrefixConstant) {
			continue
		}
		matches = append(matches, IgnoreMatch{
			Source:  fields[offset],
			Line:    fields[offset+1],
			Pattern: pattern,
			Path:    fields[offset+3],
		})
	}
	return matches, nil
}

// IgnoredPaths returns the paths of matches in order.
func IgnoredPaths(matches []IgnoreMatch) []string {
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, match.Path)
	}
	return paths
}
