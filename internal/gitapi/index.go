package gitapi

import (
	"context"
	"strings"

	"github.com/temirov/gitplumb/internal/execshell"
	"github.com/temirov/gitplumb/internal/plumbing"
	"github.com/temirov/gitplumb/internal/result"
)

const (
	lsFilesSubcommandConstant          = "ls-files"
	lsTreeSubcommandConstant           = "ls-tree"
	longFlagConstant                   = "-l"
	formatFlagPrefixConstant           = "--format="
	formatVersionConstant              = ">= 2.38"
	indexEntriesOperationConstant      = "ls-files --format"
	othersFlagConstant                 = "--others"
	excludeStandardFlagConstant        = "--exclude-standard"
	pathspecSeparatorConstant          = "--"
	checkIgnoreSubcommandConstant      = "check-ignore"
	verboseFlagConstant                = "-v"
	standardInputFlagConstant          = "--stdin"
	pathListSeparatorConstant          = "\x00"
	statusSubcommandConstant           = "status"
	untrackedNoneFlagConstant          = "--untracked-files=no"
	ignoreSubmodulesFlagPrefixConstant = "--ignore-submodules="
	catFileSubcommandConstant          = "cat-file"
	prettyPrintFlagConstant            = "-p"
)

// StatusOptions configure TrackedStatus.
type StatusOptions struct {
	// IgnoreSubmodules is passed through as --ignore-submodules=<value> when set.
	IgnoreSubmodules string
}

// IndexEntries lists the index of the repository at workingDirectory.
func (client *Client) IndexEntries(ctx context.Context, workingDirectory string) result.Result[[]plumbing.WorkingTreeEntry, error] {
	return client.listIndex(ctx, workingDirectory, plumbing.IndexEntryFormat, plumbing.ParseIndexEntries)
}

// ExtendedIndexEntries lists the index together with object types and sizes.
func (client *Client) ExtendedIndexEntries(ctx context.Context, workingDirectory string) result.Result[[]plumbing.WorkingTreeEntry, error] {
	return client.listIndex(ctx, workingDirectory, plumbing.ExtendedIndexEntryFormat, plumbing.ParseExtendedIndexEntries)
}

func (client *Client) listIndex(ctx context.Context, workingDirectory string, format string, parse func([]byte) ([]plumbing.WorkingTreeEntry, error)) result.Result[[]plumbing.WorkingTreeEntry, error] {
	if versionError := client.requireVersion(indexEntriesOperationConstant, formatVersionConstant); versionError != nil {
		return result.Failure[[]plumbing.WorkingTreeEntry](versionError)
	}
	arguments := []string{lsFilesSubcommandConstant, nulTerminatedFlagConstant, formatFlagPrefixConstant + format}
	invocation := client.read(ctx, workingDirectory, arguments...)
	return decodeOutcome(invocation, client.describe(workingDirectory, arguments), parse)
}

// UntrackedFiles lists untracked paths that are not excluded by ignore rules.
func (client *Client) UntrackedFiles(ctx context.Context, workingDirectory string) result.Result[[]string, error] {
	invocation := client.read(ctx, workingDirectory, lsFilesSubcommandConstant, nulTerminatedFlagConstant, othersFlagConstant, excludeStandardFlagConstant)
	return result.Map(invocation, func(outcome execshell.Outcome) []string {
		return plumbing.ParseNULList(outcome.StandardOutput)
	})
}

// TreeEntries lists treeish, optionally restricted to paths.
func (client *Client) TreeEntries(ctx context.Context, workingDirectory string, treeish string, paths ...string) result.Result[[]plumbing.TreeEntry, error] {
	arguments := []string{lsTreeSubcommandConstant, longFlagConstant, nulTerminatedFlagConstant, treeish, pathspecSeparatorConstant}
	arguments = append(arguments, paths...)
	invocation := client.read(ctx, workingDirectory, arguments...)
	return decodeOutcome(invocation, client.describe(workingDirectory, arguments), plumbing.ParseTreeEntries)
}

// HasExecutableBit reports whether path is recorded with an executable mode in treeish.
func (client *Client) HasExecutableBit(ctx context.Context, workingDirectory string, treeish string, path string) result.Result[bool, error] {
	return result.AndThen(client.TreeEntries(ctx, workingDirectory, treeish, path), func(entries []plumbing.TreeEntry) result.Result[bool, error] {
		for _, entry := range entries {
			if entry.Path != path {
				continue
			}
			executable, modeError := plumbing.HasExecutableBit(entry.Mode)
			if modeError != nil {
				return result.Failure[bool](modeError)
			}
			return result.Success(executable)
		}
		return result.Failure[bool](ErrPathNotInTree)
	})
}

// CheckIgnore reports which of paths are ignored and by which pattern. Paths are sent over
// standard input so their count is not bounded by the command line length.
func (client *Client) CheckIgnore(ctx context.Context, workingDirectory string, paths []string) result.Result[[]plumbing.IgnoreMatch, error] {
	if len(paths) == 0 {
		return result.Success([]plumbing.IgnoreMatch{})
	}
	arguments := []string{checkIgnoreSubcommandConstant, verboseFlagConstant, nulTerminatedFlagConstant, standardInputFlagConstant}
	invocation := client.invoke(ctx, execshell.Request{
		WorkingDirectory: workingDirectory,
		Arguments:        arguments,
		StandardInput:    []byte(strings.Join(paths, pathListSeparatorConstant) + pathListSeparatorConstant),
	})
	matches := decodeOutcome(invocation, client.describe(workingDirectory, arguments), plumbing.ParseIgnoreCheck)
	return recoverQuietExit(matches, []plumbing.IgnoreMatch{})
}

// TrackedStatus reports changed tracked paths. Output is parsed as it streams so large
// repositories are never buffered whole.
func (client *Client) TrackedStatus(ctx context.Context, workingDirectory string, options StatusOptions) result.Result[[]plumbing.FileStatus, error] {
	arguments := []string{statusSubcommandConstant, nulTerminatedFlagConstant, untrackedNoneFlagConstant}
	if ignoreSubmodules := strings.TrimSpace(options.IgnoreSubmodules); len(ignoreSubmodules) > 0 {
		arguments = append(arguments, ignoreSubmodulesFlagPrefixConstant+ignoreSubmodules)
	}

	parser := plumbing.NewStatusParser()
	invocation := client.invoke(ctx, execshell.Request{
		WorkingDirectory:   workingDirectory,
		Arguments:          arguments,
		Mode:               execshell.OutputModeStreamRaw,
		StandardOutputSink: parser,
	})
	return result.AndThen(invocation, func(outcome execshell.Outcome) result.Result[[]plumbing.FileStatus, error] {
		if closeError := parser.Close(); closeError != nil {
			return result.Failure[[]plumbing.FileStatus](execshell.DecodeError{
				Command:       client.describe(workingDirectory, arguments),
				StandardError: outcome.StandardError,
				Cause:         closeError,
			})
		}
		return result.Success(parser.Entries())
	})
}

// ObjectContent returns the pretty-printed content of object.
func (client *Client) ObjectContent(ctx context.Context, workingDirectory string, object string) result.Result[[]byte, error] {
	invocation := client.read(ctx, workingDirectory, catFileSubcommandConstant, prettyPrintFlagConstant, object)
	return result.Map(invocation, func(outcome execshell.Outcome) []byte {
		return outcome.StandardOutput
	})
}
