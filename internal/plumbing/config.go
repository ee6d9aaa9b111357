package plumbing

import (
	"fmt"
	"strings"
)

// ConfigScope identifies where a configuration value was defined.
type ConfigScope string

// Configuration scopes reported by `git config --show-scope`.
const (
	ConfigScopeSystem   ConfigScope = "system"
	ConfigScopeGlobal   ConfigScope = "global"
	ConfigScopeLocal    ConfigScope = "local"
	ConfigScopeWorktree ConfigScope = "worktree"
	ConfigScopeCommand  ConfigScope = "command"
)

const (
	configValueFormatNameConstant   = "config value"
	configListFormatNameConstant    = "config entry"
	configValueFieldCountConstant   = 2
	emptyKeyReasonConstant          = "empty key"
	configKeyValueSeparatorConstant = "\n"
)

var knownConfigScopes = map[ConfigScope]struct{}{
	ConfigScopeSystem:   {},
	ConfigScopeGlobal:   {},
	ConfigScopeLocal:    {},
	ConfigScopeWorktree: {},
	ConfigScopeCommand:  {},
}

// ConfigValue is a single configuration value together with its scope.
type ConfigValue struct {
	Scope ConfigScope `yaml:"scope"`
	Value string      `yaml:"value"`
}

// ConfigEntry is one record of `git config --list`. HasValue is false for keys declared
// without "=", which git treats as boolean true.
type ConfigEntry struct {
	Scope    ConfigScope `yaml:"scope"`
	Key      string      `yaml:"key"`
	Value    string      `yaml:"value"`
	HasValue bool        `yaml:"has_value"`
}

// ParseConfigValue parses `git config --show-scope -z --get <key>` output: "scope\0value\0".
func ParseConfigValue(raw []byte) (ConfigValue, error) {
	fields := splitNULFields(raw)
	if len(fields) != configValueFieldCountConstant {
		return ConfigValue{}, arityError(configValueFormatNameConstant, 0, configValueFieldCountConstant, len(fields))
	}
	scope, scopeError := parseConfigScope(configValueFormatNameConstant, 0, fields[0])
	if scopeError != nil {
		return ConfigValue{}, scopeError
	}
	return ConfigValue{Scope: scope, Value: fields[1]}, nil
}

// ParseConfigList parses `git config --show-scope -z --list` output, where each record is
// "scope\0key\nvalue\0" or "scope\0key\0" for keys without a value.
func ParseConfigList(raw []byte) ([]ConfigEntry, error) {
	fields := splitNULFields(raw)
	if len(fields)%configValueFieldCountConstant != 0 {
		return nil, arityError(configListFormatNameConstant, len(fields)/configValueFieldCountConstant, configValueFieldCountConstant, len(fields)%configValueFieldCountConstant)
	}

	entries := make([]ConfigEntry, 0, len(fields)/configValueFieldCountConstant)
	for offset := 0; offset < len(fields); offset += configValueFieldCountConstant {
		record := offset / configValueFieldCountConstant
		scope, scopeError := parseConfigScope(configListFormatNameConstant, record, fields[offset])
		if scopeError != nil {
			return nil, scopeError
		}
		key, value, hasValue := strings.Cut(fields[offset+1], configKeyValueSeparatorConstant)
		if len(key) == 0 {
			return nil, RecordError{Format: configListFormatNameConstant, Record: record, Reason: emptyKeyReasonConstant}
		}
		entries = append(entries, ConfigEntry{Scope: scope, Key: key, Value: value, HasValue: hasValue})
	}
	return entries, nil
}

func parseConfigScope(format string, record int, value string) (ConfigScope, error) {
	scope := ConfigScope(value)
	if _, known := knownConfigScopes[scope]; !known {
		return "", RecordError{Format: format, Record: record, Reason: fmt.Sprintf(unknownScopeTemplateConstant, value)}
	}
	return scope, nil
}
