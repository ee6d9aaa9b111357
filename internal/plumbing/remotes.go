package plumbing

import (
	"fmt"
	"strings"
)

// Remote URL directions reported by `git remote -v`.
const (
	RemoteDirectionFetch = "fetch"
	RemoteDirectionPush  = "push"
)

const (
	remoteFormatNameConstant               = "remote"
	remoteNameSeparatorConstant            = "\t"
	remoteDirectionOpenConstant            = " ("
	remoteDirectionCloseConstant           = ")"
	unknownDirectionReasonTemplateConstant = "unknown direction %q"
)

// RemoteLine is one line of `git remote -v`.
type RemoteLine struct {
	Name      string
	URL       string
	Direction string
}

// Remote aggregates the fetch and push URLs of a named remote.
type Remote struct {
	Name     string `yaml:"name"`
	FetchURL string `yaml:"fetch_url"`
	PushURL  string `yaml:"push_url"`
}

// ParseRemoteLine parses "name\turl (fetch)" or "name\turl (push)".
func ParseRemoteLine(record int, line string) (RemoteLine, error) {
	name, remainder, found := strings.Cut(line, remoteNameSeparatorConstant)
	if !found || len(name) == 0 {
		return RemoteLine{}, RecordError{Format: remoteFormatNameConstant, Record: record, Reason: fmt.Sprintf(missingSeparatorTemplateConstant, "name")}
	}
	directionStart := strings.LastIndex(remainder, remoteDirectionOpenConstant)
	if directionStart == -1 || !strings.HasSuffix(remainder, remoteDirectionCloseConstant) {
		return RemoteLine{}, RecordError{Format: remoteFormatNameConstant, Record: record, Reason: fmt.Sprintf(missingSeparatorTemplateConstant, "direction")}
	}

	direction := remainder[directionStart+len(remoteDirectionOpenConstant) : len(remainder)-len(remoteDirectionCloseConstant)]
	if direction != RemoteDirectionFetch && direction != RemoteDirectionPush {
		return RemoteLine{}, RecordError{Format: remoteFormatNameConstant, Record: record, Reason: fmt.Sprintf(unknownDirectionReasonTemplateConstant, direction)}
	}
	return RemoteLine{Name: name, URL: remainder[:directionStart], Direction: direction}, nil
}

// CollectRemotes merges remote lines into one Remote per name, ordered by first appearance.
func CollectRemotes(lines []RemoteLine) []Remote {
	remotes := make([]Remote, 0, len(lines)/2)
	positions := make(map[string]int, len(lines))
	for _, line := range lines {
		position, seen := positions[line.Name]
		if !seen {
			position = len(remotes)
			positions[line.Name] = position
			remotes = append(remotes, Remote{Name: line.Name})
		}
		switch line.Direction {
		case RemoteDirectionFetch:
			remotes[position].FetchURL = line.URL
		case RemoteDirectionPush:
			remotes[position].PushURL = line.URL
		}
	}
	return remotes
}
