package plumbing

import (
	"fmt"
	"strconv"
	"strings"
)

// RefFormat is passed to `git for-each-ref --format=...`; ParseRefLine reads one output line.
const RefFormat = "%(refname)%00%(refname:short)%00%(objectname)%00%(upstream:short)%00%(upstream:track,nobracket)"

const (
	refFormatNameConstant         = "ref"
	refFieldCountConstant         = 5
	trackingGoneConstant          = "gone"
	trackingAheadConstant         = "ahead"
	trackingBehindConstant        = "behind"
	trackingSeparatorConstant     = ","
	trackingFieldNameConstant     = "tracking count"
	trackingUnknownReasonConstant = "unknown tracking state %q"
)

// Ref is a reference with its optional upstream tracking state.
type Ref struct {
	Name         string `yaml:"name"`
	ShortName    string `yaml:"short_name"`
	ObjectName   string `yaml:"object_name"`
	Upstream     string `yaml:"upstream,omitempty"`
	Ahead        int    `yaml:"ahead,omitempty"`
	Behind       int    `yaml:"behind,omitempty"`
	UpstreamGone bool   `yaml:"upstream_gone,omitempty"`
}

// ParseRefLine parses one line produced with RefFormat. record is used for error reporting.
func ParseRefLine(record int, line string) (Ref, error) {
	fields := strings.Split(line, nulSeparatorConstant)
	if len(fields) != refFieldCountConstant {
		return Ref{}, arityError(refFormatNameConstant, record, refFieldCountConstant, len(fields))
	}

	ref := Ref{
		Name:       fields[0],
		ShortName:  fields[1],
		ObjectName: fields[2],
		Upstream:   fields[3],
	}
	if trackingError := parseTracking(record, fields[4], &ref); trackingError != nil {
		return Ref{}, trackingError
	}
	return ref, nil
}

// parseTracking reads "ahead N, behind M", either half alone, "gone" or nothing.
func parseTracking(record int, tracking string, ref *Ref) error {
	trimmedTracking := strings.TrimSpace(tracking)
	if len(trimmedTracking) == 0 {
		return nil
	}
	if trimmedTracking == trackingGoneConstant {
		ref.UpstreamGone = true
		return nil
	}

	for _, part := range strings.Split(trimmedTracking, trackingSeparatorConstant) {
		label, countText, found := strings.Cut(strings.TrimSpace(part), " ")
		if !found {
			return RecordError{Format: refFormatNameConstant, Record: record, Reason: fmt.Sprintf(trackingUnknownReasonConstant, tracking)}
		}
		count, parseError := strconv.Atoi(countText)
		if parseError != nil {
			return RecordError{Format: refFormatNameConstant, Record: record, Reason: fmt.Sprintf(invalidNumberTemplateConstant, trackingFieldNameConstant, countText)}
		}
		switch label {
		case trackingAheadConstant:
			ref.Ahead = count
		case trackingBehindConstant:
			ref.Behind = count
		default:
			return RecordError{Format: refFormatNameConstant, Record: record, Reason: fmt.Sprintf(trackingUnknownReasonConstant, tracking)}
		}
	}
	return nil
}
