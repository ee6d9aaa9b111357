// Package testsupport builds throwaway git repositories for integration tests. Repositories are
// written with go-git so fixtures do not depend on the git binary under test.
package testsupport

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	gitplumbing "github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	defaultBranchNameConstant    = "main"
	defaultCommitMessageConstant = "Initial commit"
	authorNameConstant           = "Fixture Author"
	authorEmailConstant          = "fixture@example.com"
	regularFileModeConstant      = 0o644
	executableFileModeConstant   = 0o755
	directoryModeConstant        = 0o755
	ignoreFileNameConstant       = ".gitignore"
)

var fixtureCommitTime = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

// File describes a fixture file. Untracked files are written but never staged.
type File struct {
	Content    string
	Executable bool
	Untracked  bool
}

// RepositoryOptions describe the repository NewRepository creates.
type RepositoryOptions struct {
	Branch string
	Files  map[string]File
	// IgnorePatterns are written to .gitignore, one per line, and committed.
	IgnorePatterns []string
	// Remotes maps remote names to URLs.
	Remotes map[string]string
}

// Repository is a committed fixture repository on disk.
type Repository struct {
	Path       string
	Branch     string
	HeadObject string
}

// NewRepository creates a repository under a test temporary directory and commits every tracked
// file. The repository is removed when the test finishes.
func NewRepository(testInstance testing.TB, options RepositoryOptions) Repository {
	testInstance.Helper()

	branch := options.Branch
	if len(branch) == 0 {
		branch = defaultBranchNameConstant
	}

	repositoryPath := testInstance.TempDir()
	repository, initError := git.PlainInitWithOptions(repositoryPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: gitplumbing.NewBranchReferenceName(branch)},
	})
	require.NoError(testInstance, initError)

	files := make(map[string]File, len(options.Files)+1)
	for relativePath, file := range options.Files {
		files[relativePath] = file
	}
	if len(options.IgnorePatterns) > 0 {
		ignoreContent := ""
		for _, pattern := range options.IgnorePatterns {
			ignoreContent += pattern + "\n"
		}
		files[ignoreFileNameConstant] = File{Content: ignoreContent}
	}

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	for _, relativePath := range sortedPaths(files) {
		file := files[relativePath]
		WriteFile(testInstance, repositoryPath, relativePath, file.Content, file.Executable)
		if file.Untracked {
			continue
		}
		_, addError := worktree.Add(relativePath)
		require.NoError(testInstance, addError)
	}

	signature := &object.Signature{Name: authorNameConstant, Email: authorEmailConstant, When: fixtureCommitTime}
	commitHash, commitError := worktree.Commit(defaultCommitMessageConstant, &git.CommitOptions{
		Author:            signature,
		Committer:         signature,
		AllowEmptyCommits: true,
	})
	require.NoError(testInstance, commitError)

	for remoteName, remoteURL := range options.Remotes {
		_, remoteError := repository.CreateRemote(&gitconfig.RemoteConfig{Name: remoteName, URLs: []string{remoteURL}})
		require.NoError(testInstance, remoteError)
	}

	return Repository{Path: repositoryPath, Branch: branch, HeadObject: commitHash.String()}
}

// WriteFile writes content to relativePath inside root, creating parent directories.
func WriteFile(testInstance testing.TB, root string, relativePath string, content string, executable bool) {
	testInstance.Helper()

	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), directoryModeConstant))

	var fileMode os.FileMode = regularFileModeConstant
	if executable {
		fileMode = executableFileModeConstant
	}
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), fileMode))
	require.NoError(testInstance, os.Chmod(absolutePath, fileMode))
}

func sortedPaths(files map[string]File) []string {
	paths := make([]string, 0, len(files))
	for relativePath := range files {
		paths = append(paths, relativePath)
	}
	sort.Strings(paths)
	return paths
}
