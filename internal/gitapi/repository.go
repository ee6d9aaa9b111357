package gitapi

import (
	"context"
	"strings"

	"github.com/temirov/gitplumb/internal/execshell"
	"github.com/temirov/gitplumb/internal/result"
)

const (
	revParseSubcommandConstant       = "rev-parse"
	showToplevelFlagConstant         = "--show-toplevel"
	gitDirectoryFlagConstant         = "--git-dir"
	absoluteGitDirectoryFlagConstant = "--absolute-git-dir"
	absolutePathFormatFlagConstant   = "--path-format=absolute"
	pathFormatVersionConstant        = ">= 2.31"
	verifyFlagConstant               = "--verify"
	quietFlagConstant                = "-q"
	headReferenceConstant            = "HEAD"
	symbolicRefSubcommandConstant    = "symbolic-ref"
	shortFlagConstant                = "--short"
	initSubcommandConstant           = "init"
	bareFlagConstant                 = "--bare"
	initialBranchFlagConstant        = "--initial-branch="
	initialBranchVersionConstant     = ">= 2.28"
	initialBranchOperationConstant   = "init --initial-branch"
	leadingWhitespaceCharsConstant   = " \t"
)

// InitOptions configure Init.
type InitOptions struct {
	Bare          bool
	InitialBranch string
}

// ShowToplevel returns the absolute path of the working tree containing workingDirectory.
func (client *Client) ShowToplevel(ctx context.Context, workingDirectory string) result.Result[string, error] {
	invocation := client.read(ctx, workingDirectory, revParseSubcommandConstant, showToplevelFlagConstant)
	return result.Map(invocation, func(outcome execshell.Outcome) string {
		return trimLineEnding(outcome.Text())
	})
}

// GitDirectory returns the absolute path of the repository's git directory. Trailing spaces are
// part of the directory name and are preserved.
func (client *Client) GitDirectory(ctx context.Context, workingDirectory string) result.Result[string, error] {
	arguments := []string{revParseSubcommandConstant, absoluteGitDirectoryFlagConstant}
	if supported, _ := client.executionContext.SupportsVersion(pathFormatVersionConstant); supported {
		arguments = []string{revParseSubcommandConstant, absolutePathFormatFlagConstant, gitDirectoryFlagConstant}
	}
	invocation := client.read(ctx, workingDirectory, arguments...)
	return result.Map(invocation, func(outcome execshell.Outcome) string {
		return trimLineEnding(strings.TrimLeft(outcome.Text(), leadingWhitespaceCharsConstant))
	})
}

// Head returns the object name HEAD points at, or an empty string on an unborn branch.
func (client *Client) Head(ctx context.Context, workingDirectory string) result.Result[string, error] {
	invocation := client.read(ctx, workingDirectory, revParseSubcommandConstant, verifyFlagConstant, quietFlagConstant, headReferenceConstant)
	objectName := result.Map(invocation, func(outcome execshell.Outcome) string {
		return strings.TrimSpace(outcome.Text())
	})
	return recoverQuietExit(objectName, "")
}

// SymbolicHead returns the short name of the checked out branch, or an empty string when HEAD is
// detached.
func (client *Client) SymbolicHead(ctx context.Context, workingDirectory string) result.Result[string, error] {
	invocation := client.read(ctx, workingDirectory, symbolicRefSubcommandConstant, quietFlagConstant, shortFlagConstant, headReferenceConstant)
	branchName := result.Map(invocation, func(outcome execshell.Outcome) string {
		return strings.TrimSpace(outcome.Text())
	})
	return recoverQuietExit(branchName, "")
}

// Init creates a repository in workingDirectory.
func (client *Client) Init(ctx context.Context, workingDirectory string, options InitOptions) result.Result[execshell.Outcome, error] {
	arguments := []string{initSubcommandConstant, quietFlagConstant}
	if options.Bare {
		arguments = append(arguments, bareFlagConstant)
	}
	if initialBranch := strings.TrimSpace(options.InitialBranch); len(initialBranch) > 0 {
		if versionError := client.requireVersion(initialBranchOperationConstant, initialBranchVersionConstant); versionError != nil {
			return result.Failure[execshell.Outcome](versionError)
		}
		arguments = append(arguments, initialBranchFlagConstant+initialBranch)
	}
	return client.read(ctx, workingDirectory, arguments...)
}
