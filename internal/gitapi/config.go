package gitapi

import (
	"context"

	"github.com/temirov/gitplumb/internal/plumbing"
	"github.com/temirov/gitplumb/internal/result"
)

const (
	configSubcommandConstant  = "config"
	showScopeFlagConstant     = "--show-scope"
	nulTerminatedFlagConstant = "-z"
	getFlagConstant           = "--get"
	listFlagConstant          = "--list"
	scopeFlagPrefixConstant   = "--"
	showScopeVersionConstant  = ">= 2.26"
	configOperationConstant   = "config --show-scope"
)

// ConfigLookup is the outcome of ConfigGet. Present is false when the key is not set in any
// consulted scope.
type ConfigLookup struct {
	Value   plumbing.ConfigValue `yaml:"value"`
	Present bool                 `yaml:"present"`
}

// ConfigGet reads key. An empty scope consults every scope, otherwise only the named one.
// Absence is reported as ConfigLookup{Present: false} rather than as an error.
func (client *Client) ConfigGet(ctx context.Context, workingDirectory string, scope plumbing.ConfigScope, key string) result.Result[ConfigLookup, error] {
	if versionError := client.requireVersion(configOperationConstant, showScopeVersionConstant); versionError != nil {
		return result.Failure[ConfigLookup](versionError)
	}

	arguments := append(configArguments(scope), getFlagConstant, key)
	invocation := client.read(ctx, workingDirectory, arguments...)
	lookup := decodeOutcome(invocation, client.describe(workingDirectory, arguments), func(output []byte) (ConfigLookup, error) {
		value, parseError := plumbing.ParseConfigValue(output)
		if parseError != nil {
			return ConfigLookup{}, parseError
		}
		return ConfigLookup{Value: value, Present: true}, nil
	})
	return recoverQuietExit(lookup, ConfigLookup{})
}

// ConfigList lists every entry visible in scope, or in all scopes when scope is empty.
func (client *Client) ConfigList(ctx context.Context, workingDirectory string, scope plumbing.ConfigScope) result.Result[[]plumbing.ConfigEntry, error] {
	if versionError := client.requireVersion(configOperationConstant, showScopeVersionConstant); versionError != nil {
		return result.Failure[[]plumbing.ConfigEntry](versionError)
	}

	arguments := append(configArguments(scope), listFlagConstant)
	invocation := client.read(ctx, workingDirectory, arguments...)
	return decodeOutcome(invocation, client.describe(workingDirectory, arguments), plumbing.ParseConfigList)
}

func configArguments(scope plumbing.ConfigScope) []string {
	arguments := []string{configSubcommandConstant}
	if len(scope) > 0 {
		arguments = append(arguments, scopeFlagPrefixConstant+string(scope))
	}
	return append(arguments, showScopeFlagConstant, nulTerminatedFlagConstant)
}
