package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/gitplumb/internal/gitapi"
	"github.com/temirov/gitplumb/internal/linestream"
	"github.com/temirov/gitplumb/internal/plumbing"
	"github.com/temirov/gitplumb/internal/result"
	flagutils "github.com/temirov/gitplumb/internal/utils/flags"
)

const (
	toplevelUseConstant                = "toplevel"
	toplevelShortConstant              = "Print the root of the working tree"
	gitDirectoryUseConstant            = "git-dir"
	gitDirectoryShortConstant          = "Print the absolute path of the git directory"
	headUseConstant                    = "head"
	headShortConstant                  = "Print the object and branch HEAD points at"
	configGetUseConstant               = "config-get <key>"
	configGetShortConstant             = "Read one configuration value together with its scope"
	configListUseConstant              = "config-list"
	configListShortConstant            = "List configuration entries together with their scopes"
	checkIgnoreUseConstant             = "check-ignore <path> [path ...]"
	checkIgnoreShortConstant           = "Report which paths are ignored and by which pattern"
	lsFilesUseConstant                 = "ls-files"
	lsFilesShortConstant               = "List index entries"
	lsTreeUseConstant                  = "ls-tree <tree-ish> [path ...]"
	lsTreeShortConstant                = "List tree entries with sizes"
	executableUseConstant              = "executable <tree-ish> <path>"
	executableShortConstant            = "Report whether a path is recorded with an executable mode"
	statusUseConstant                  = "status"
	statusShortConstant                = "List changed tracked paths"
	untrackedUseConstant               = "untracked"
	untrackedShortConstant             = "List untracked paths that are not ignored"
	refsUseConstant                    = "refs [pattern ...]"
	refsShortConstant                  = "List references with upstream tracking state"
	remotesUseConstant                 = "remotes"
	remotesShortConstant               = "List remotes with fetch and push URLs"
	initUseConstant                    = "init [directory]"
	initShortConstant                  = "Create an empty repository"
	catFileUseConstant                 = "cat-file <object>"
	catFileShortConstant               = "Print the content of an object"
	streamUseConstant                  = "stream -- <git arguments>"
	streamShortConstant                = "Run git with arbitrary arguments and stream its output line by line"
	scopeFlagNameConstant              = "scope"
	scopeFlagUsageConstant             = "Configuration scope to consult."
	scopeAllConstant                   = "all"
	extendedFlagNameConstant           = "extended"
	extendedFlagUsageConstant          = "Include object types and sizes."
	ignoreSubmodulesFlagConstant       = "ignore-submodules"
	ignoreSubmodulesUsageConstant      = "Passed to git status --ignore-submodules."
	bareFlagNameConstant               = "bare"
	bareFlagUsageConstant              = "Create a bare repository."
	initialBranchFlagNameConstant      = "initial-branch"
	initialBranchFlagUsageConstant     = "Name of the initial branch."
	initDirectoryPermissionsConstant   = 0o755
	initDirectoryErrorTemplateConstant = "unable to create %s: %w"
	unbornHeadLabelConstant            = "(unborn)"
	detachedHeadLabelConstant          = "(detached)"
	configNotSetTemplateConstant       = "configuration key %q is not set"
	objectWriteErrorTemplateConstant   = "unable to write object %s: %w"
	treeEntryTextTemplateConstant      = "%s %s %s %s\t%s"
	indexEntryTextTemplateConstant     = "%s %s %d\t%s"
	statusTextTemplateConstant         = "%s%s %s"
	renamedTextTemplateConstant        = "%s%s %s -> %s"
	ignoreTextTemplateConstant         = "%s:%s:%s\t%s"
	configTextTemplateConstant         = "%s\t%s=%s"
	configKeyTextTemplateConstant      = "%s\t%s"
	refTextTemplateConstant            = "%s %s"
	refUpstreamTemplateConstant        = " -> %s"
	refTrackingTemplateConstant        = " [ahead %d, behind %d]"
	refGoneSuffixConstant              = " [gone]"
	remoteTextTemplateConstant         = "%s\t%s (fetch)\t%s (push)"
	headTextTemplateConstant           = "%s %s"
	unknownSizeLabelConstant           = "-"
	toplevelRecordNameConstant         = "toplevel"
	gitDirectoryRecordNameConstant     = "git_directory"
	executableRecordNameConstant       = "executable"
	indexHeadingConstant               = "Index entries"
	treeHeadingConstant                = "Tree entries"
	statusHeadingConstant              = "Changed paths"
	untrackedHeadingConstant           = "Untracked paths"
	ignoreHeadingConstant              = "Ignored paths"
	configHeadingConstant              = "Configuration entries"
	refsHeadingConstant                = "References"
	remotesHeadingConstant             = "Remotes"
)

var configScopeChoices = []string{
	scopeAllConstant,
	string(plumbing.ConfigScopeSystem),
	string(plumbing.ConfigScopeGlobal),
	string(plumbing.ConfigScopeLocal),
	string(plumbing.ConfigScopeWorktree),
}

type headRecord struct {
	Object string `yaml:"object"`
	Branch string `yaml:"branch"`
}

type gitOperation func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error

func (application *Application) gitRunner(operation gitOperation) func(*cobra.Command, []string) error {
	return func(command *cobra.Command, arguments []string) error {
		client, clientError := result.ToPair(application.gitClient(command.Context()))
		if clientError != nil {
			return clientError
		}
		renderer := newRecordRenderer(application.outputFlagValue, command.OutOrStdout())
		return operation(command, arguments, client, application.workingDirectory(command), renderer)
	}
}

func (application *Application) buildGitCommands() []*cobra.Command {
	return []*cobra.Command{
		application.buildToplevelCommand(),
		application.buildGitDirectoryCommand(),
		application.buildHeadCommand(),
		application.buildConfigGetCommand(),
		application.buildConfigListCommand(),
		application.buildCheckIgnoreCommand(),
		application.buildListFilesCommand(),
		application.buildListTreeCommand(),
		application.buildExecutableCommand(),
		application.buildStatusCommand(),
		application.buildUntrackedCommand(),
		application.buildRefsCommand(),
		application.buildRemotesCommand(),
		application.buildInitCommand(),
		application.buildCatFileCommand(),
		application.buildStreamCommand(),
	}
}

func (application *Application) buildToplevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   toplevelUseConstant,
		Short: toplevelShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			toplevel, toplevelError := result.ToPair(client.ShowToplevel(command.Context(), workingDirectory))
			if toplevelError != nil {
				return toplevelError
			}
			return renderer.value(toplevelRecordNameConstant, map[string]string{toplevelRecordNameConstant: toplevel}, toplevel)
		}),
	}
}

func (application *Application) buildGitDirectoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   gitDirectoryUseConstant,
		Short: gitDirectoryShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			gitDirectory, gitDirectoryError := result.ToPair(client.GitDirectory(command.Context(), workingDirectory))
			if gitDirectoryError != nil {
				return gitDirectoryError
			}
			return renderer.value(gitDirectoryRecordNameConstant, map[string]string{gitDirectoryRecordNameConstant: gitDirectory}, gitDirectory)
		}),
	}
}

func (application *Application) buildHeadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   headUseConstant,
		Short: headShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			object, objectError := result.ToPair(client.Head(command.Context(), workingDirectory))
			if objectError != nil {
				return objectError
			}
			branch, branchError := result.ToPair(client.SymbolicHead(command.Context(), workingDirectory))
			if branchError != nil {
				return branchError
			}

			objectLabel := object
			if len(objectLabel) == 0 {
				objectLabel = unbornHeadLabelConstant
			}
			branchLabel := branch
			if len(branchLabel) == 0 {
				branchLabel = detachedHeadLabelConstant
			}
			return renderer.value(headUseConstant, headRecord{Object: object, Branch: branch}, fmt.Sprintf(headTextTemplateConstant, objectLabel, branchLabel))
		}),
	}
}

func (application *Application) buildConfigGetCommand() *cobra.Command {
	var scope string
	command := &cobra.Command{
		Use:   configGetUseConstant,
		Short: configGetShortConstant,
		Args:  cobra.ExactArgs(1),
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			key := arguments[0]
			lookup, lookupError := result.ToPair(client.ConfigGet(command.Context(), workingDirectory, configScope(scope), key))
			if lookupError != nil {
				return lookupError
			}
			if !lookup.Present {
				return fmt.Errorf(configNotSetTemplateConstant, key)
			}
			return renderer.value(key, lookup, fmt.Sprintf(configKeyTextTemplateConstant, lookup.Value.Scope, lookup.Value.Value))
		}),
	}
	flagutils.AddChoiceFlag(command.Flags(), &scope, scopeFlagNameConstant, scopeAllConstant, configScopeChoices, scopeFlagUsageConstant)
	return command
}

func (application *Application) buildConfigListCommand() *cobra.Command {
	var scope string
	command := &cobra.Command{
		Use:   configListUseConstant,
		Short: configListShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			entries, listError := result.ToPair(client.ConfigList(command.Context(), workingDirectory, configScope(scope)))
			if listError != nil {
				return listError
			}
			return renderRecords(renderer, configHeadingConstant, entries, formatConfigEntry)
		}),
	}
	flagutils.AddChoiceFlag(command.Flags(), &scope, scopeFlagNameConstant, scopeAllConstant, configScopeChoices, scopeFlagUsageConstant)
	return command
}

func (application *Application) buildCheckIgnoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   checkIgnoreUseConstant,
		Short: checkIgnoreShortConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			matches, matchError := result.ToPair(client.CheckIgnore(command.Context(), workingDirectory, arguments))
			if matchError != nil {
				return matchError
			}
			return renderRecords(renderer, ignoreHeadingConstant, matches, func(match plumbing.IgnoreMatch) string {
				return fmt.Sprintf(ignoreTextTemplateConstant, match.Source, match.Line, match.Pattern, match.Path)
			})
		}),
	}
}

func (application *Application) buildListFilesCommand() *cobra.Command {
	var extended bool
	command := &cobra.Command{
		Use:   lsFilesUseConstant,
		Short: lsFilesShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			listing := client.IndexEntries
			if extended {
				listing = client.ExtendedIndexEntries
			}
			entries, entriesError := result.ToPair(listing(command.Context(), workingDirectory))
			if entriesError != nil {
				return entriesError
			}
			return renderRecords(renderer, indexHeadingConstant, entries, func(entry plumbing.WorkingTreeEntry) string {
				if extended {
					return fmt.Sprintf(treeEntryTextTemplateConstant, entry.Mode, entry.ObjectType, entry.ObjectName, formatSize(entry.ObjectSize), entry.Path)
				}
				return fmt.Sprintf(indexEntryTextTemplateConstant, entry.Mode, entry.ObjectName, entry.Stage, entry.Path)
			})
		}),
	}
	command.Flags().BoolVar(&extended, extendedFlagNameConstant, false, extendedFlagUsageConstant)
	return command
}

func (application *Application) buildListTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   lsTreeUseConstant,
		Short: lsTreeShortConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			entries, entriesError := result.ToPair(client.TreeEntries(command.Context(), workingDirectory, arguments[0], arguments[1:]...))
			if entriesError != nil {
				return entriesError
			}
			return renderRecords(renderer, treeHeadingConstant, entries, func(entry plumbing.TreeEntry) string {
				return fmt.Sprintf(treeEntryTextTemplateConstant, entry.Mode, entry.ObjectType, entry.ObjectName, formatSize(entry.Size), entry.Path)
			})
		}),
	}
}

func (application *Application) buildExecutableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   executableUseConstant,
		Short: executableShortConstant,
		Args:  cobra.ExactArgs(2),
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			executable, executableError := result.ToPair(client.HasExecutableBit(command.Context(), workingDirectory, arguments[0], arguments[1]))
			if executableError != nil {
				return executableError
			}
			return renderer.value(executableRecordNameConstant, map[string]bool{executableRecordNameConstant: executable}, strconv.FormatBool(executable))
		}),
	}
}

func (application *Application) buildStatusCommand() *cobra.Command {
	var ignoreSubmodules string
	command := &cobra.Command{
		Use:   statusUseConstant,
		Short: statusShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			statuses, statusError := result.ToPair(client.TrackedStatus(command.Context(), workingDirectory, gitapi.StatusOptions{IgnoreSubmodules: ignoreSubmodules}))
			if statusError != nil {
				return statusError
			}
			return renderRecords(renderer, statusHeadingConstant, statuses, formatFileStatus)
		}),
	}
	command.Flags().StringVar(&ignoreSubmodules, ignoreSubmodulesFlagConstant, "", ignoreSubmodulesUsageConstant)
	return command
}

func (application *Application) buildUntrackedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   untrackedUseConstant,
		Short: untrackedShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			paths, untrackedError := result.ToPair(client.UntrackedFiles(command.Context(), workingDirectory))
			if untrackedError != nil {
				return untrackedError
			}
			return renderRecords(renderer, untrackedHeadingConstant, paths, func(path string) string { return path })
		}),
	}
}

func (application *Application) buildRefsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   refsUseConstant,
		Short: refsShortConstant,
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			refs, refsError := result.ToPair(client.Branches(command.Context(), workingDirectory, arguments...))
			if refsError != nil {
				return refsError
			}
			return renderRecords(renderer, refsHeadingConstant, refs, formatRef)
		}),
	}
}

func (application *Application) buildRemotesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   remotesUseConstant,
		Short: remotesShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			remotes, remotesError := result.ToPair(client.Remotes(command.Context(), workingDirectory))
			if remotesError != nil {
				return remotesError
			}
			return renderRecords(renderer, remotesHeadingConstant, remotes, func(remote plumbing.Remote) string {
				return fmt.Sprintf(remoteTextTemplateConstant, remote.Name, remote.FetchURL, remote.PushURL)
			})
		}),
	}
}

func (application *Application) buildInitCommand() *cobra.Command {
	var options gitapi.InitOptions
	command := &cobra.Command{
		Use:   initUseConstant,
		Short: initShortConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, _ recordRenderer) error {
			if len(arguments) == 1 {
				targetDirectory := application.pathNormalizer.Expand(arguments[0])
				if !filepath.IsAbs(targetDirectory) {
					targetDirectory = filepath.Join(workingDirectory, targetDirectory)
				}
				if createError := os.MkdirAll(targetDirectory, initDirectoryPermissionsConstant); createError != nil {
					return fmt.Errorf(initDirectoryErrorTemplateConstant, targetDirectory, createError)
				}
				workingDirectory = targetDirectory
			}
			_, initError := result.ToPair(client.Init(command.Context(), workingDirectory, options))
			return initError
		}),
	}
	command.Flags().BoolVar(&options.Bare, bareFlagNameConstant, false, bareFlagUsageConstant)
	command.Flags().StringVar(&options.InitialBranch, initialBranchFlagNameConstant, "", initialBranchFlagUsageConstant)
	return command
}

func (application *Application) buildCatFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   catFileUseConstant,
		Short: catFileShortConstant,
		Args:  cobra.ExactArgs(1),
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			content, contentError := result.ToPair(client.ObjectContent(command.Context(), workingDirectory, arguments[0]))
			if contentError != nil {
				return contentError
			}
			if _, writeError := renderer.writer.Write(content); writeError != nil {
				return fmt.Errorf(objectWriteErrorTemplateConstant, arguments[0], writeError)
			}
			return nil
		}),
	}
}

func (application *Application) buildStreamCommand() *cobra.Command {
	return &cobra.Command{
		Use:   streamUseConstant,
		Short: streamShortConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: application.gitRunner(func(command *cobra.Command, arguments []string, client *gitapi.Client, workingDirectory string, renderer recordRenderer) error {
			_, streamError := result.ToPair(client.Stream(command.Context(), workingDirectory, arguments, func(lines *linestream.LineReader) error {
				for line := range lines.All() {
					if writeError := renderer.writer.WriteLine(line); writeError != nil {
						return writeError
					}
				}
				return lines.Err()
			}))
			return streamError
		}),
	}
}

func configScope(choice string) plumbing.ConfigScope {
	if strings.EqualFold(choice, scopeAllConstant) {
		return ""
	}
	return plumbing.ConfigScope(choice)
}

func formatSize(size int64) string {
	if size < 0 {
		return unknownSizeLabelConstant
	}
	return strconv.FormatInt(size, 10)
}

func formatFileStatus(status plumbing.FileStatus) string {
	if len(status.OriginalPath) > 0 {
		return fmt.Sprintf(renamedTextTemplateConstant, status.X, status.Y, status.OriginalPath, status.Path)
	}
	return fmt.Sprintf(statusTextTemplateConstant, status.X, status.Y, status.Path)
}

func formatConfigEntry(entry plumbing.ConfigEntry) string {
	if !entry.HasValue {
		return fmt.Sprintf(configKeyTextTemplateConstant, entry.Scope, entry.Key)
	}
	return fmt.Sprintf(configTextTemplateConstant, entry.Scope, entry.Key, entry.Value)
}

func formatRef(ref plumbing.Ref) string {
	line := fmt.Sprintf(refTextTemplateConstant, ref.ObjectName, ref.ShortName)
	if len(ref.Upstream) == 0 {
		return line
	}
	line += fmt.Sprintf(refUpstreamTemplateConstant, ref.Upstream)
	switch {
	case ref.UpstreamGone:
		line += refGoneSuffixConstant
	case ref.Ahead > 0 || ref.Behind > 0:
		line += fmt.Sprintf(refTrackingTemplateConstant, ref.Ahead, ref.Behind)
	}
	return line
}
