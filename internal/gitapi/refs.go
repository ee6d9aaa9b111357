package gitapi

import (
	"context"

	"github.com/temirov/gitplumb/internal/execshell"
	"github.com/temirov/gitplumb/internal/linestream"
	"github.com/temirov/gitplumb/internal/plumbing"
	"github.com/temirov/gitplumb/internal/result"
)

const (
	forEachRefSubcommandConstant = "for-each-ref"
	defaultBranchPatternConstant = "refs/heads"
	remoteSubcommandConstant     = "remote"
)

// Stream runs arbitrary git arguments and hands standard output to consumer line by line.
func (client *Client) Stream(ctx context.Context, workingDirectory string, arguments []string, consumer execshell.LineConsumer) result.Result[execshell.Outcome, error] {
	return client.invoke(ctx, execshell.Request{
		WorkingDirectory: workingDirectory,
		Arguments:        arguments,
		Mode:             execshell.OutputModeStreamLines,
		LineConsumer:     consumer,
	})
}

// Branches lists references matching patterns, refs/heads when none are given.
func (client *Client) Branches(ctx context.Context, workingDirectory string, patterns ...string) result.Result[[]plumbing.Ref, error] {
	if len(patterns) == 0 {
		patterns = []string{defaultBranchPatternConstant}
	}
	arguments := append([]string{forEachRefSubcommandConstant, formatFlagPrefixConstant + plumbing.RefFormat}, patterns...)

	refs := make([]plumbing.Ref, 0)
	invocation := client.Stream(ctx, workingDirectory, arguments, func(lines *linestream.LineReader) error {
		record := 0
		for line := range lines.All() {
			ref, parseError := plumbing.ParseRefLine(record, line)
			if parseError != nil {
				return parseError
			}
			refs = append(refs, ref)
			record++
		}
		return lines.Err()
	})
	return result.Map(invocation, func(execshell.Outcome) []plumbing.Ref {
		return refs
	})
}

// Remotes lists configured remotes with their fetch and push URLs.
func (client *Client) Remotes(ctx context.Context, workingDirectory string) result.Result[[]plumbing.Remote, error] {
	remoteLines := make([]plumbing.RemoteLine, 0)
	invocation := client.Stream(ctx, workingDirectory, []string{remoteSubcommandConstant, verboseFlagConstant}, func(lines *linestream.LineReader) error {
		record := 0
		for line := range lines.All() {
			remoteLine, parseError := plumbing.ParseRemoteLine(record, line)
			if parseError != nil {
				return parseError
			}
			remoteLines = append(remoteLines, remoteLine)
			record++
		}
		return lines.Err()
	})
	return result.Map(invocation, func(execshell.Outcome) []plumbing.Remote {
		return plumbing.CollectRemotes(remoteLines)
	})
}
