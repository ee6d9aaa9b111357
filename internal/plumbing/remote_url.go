package plumbing

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	fileProtocolPrefixConstant          = "file://"
	sshUserDelimiterConstant            = "@"
	scpPathDelimiterConstant            = ":"
	urlPathSeparatorConstant            = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
	minimumRepositorySegmentsConstant   = 2
)

// RemoteProtocol enumerates the transports recognised in remote URLs.
type RemoteProtocol string

// Recognised remote protocols. Local paths and file:// URLs share RemoteProtocolFile.
const (
	RemoteProtocolSSH   RemoteProtocol = "ssh"
	RemoteProtocolHTTPS RemoteProtocol = "https"
	RemoteProtocolHTTP  RemoteProtocol = "http"
	RemoteProtocolFile  RemoteProtocol = "file"
)

// RemoteURL is a remote URL split into its parts. Owner holds every path segment before the
// repository name, so nested groups such as "group/subgroup" are preserved.
type RemoteURL struct {
	Protocol   RemoteProtocol `yaml:"protocol"`
	User       string         `yaml:"user,omitempty"`
	Host       string         `yaml:"host,omitempty"`
	Owner      string         `yaml:"owner,omitempty"`
	Repository string         `yaml:"repository"`
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRemoteURL splits a remote URL as printed by `git remote -v`. It accepts ssh://,
// scp-like "user@host:path", http(s):// and file:// URLs as well as plain local paths.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHostedRemote(remote, RemoteProtocolSSH, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHostedRemote(remote, RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHostedRemote(remote, RemoteProtocolHTTP, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, fileProtocolPrefixConstant):
		return parseLocalRemote(remote, strings.TrimPrefix(trimmedRemote, fileProtocolPrefixConstant))
	case isScpLikeRemote(trimmedRemote):
		return parseScpLikeRemote(remote, trimmedRemote)
	default:
		return parseLocalRemote(remote, trimmedRemote)
	}
}

// isScpLikeRemote follows git's rule: a colon before the first slash marks "host:path", unless
// it is a single-letter drive prefix.
func isScpLikeRemote(remote string) bool {
	colonIndex := strings.Index(remote, scpPathDelimiterConstant)
	if colonIndex <= 1 {
		return false
	}
	slashIndex := strings.Index(remote, urlPathSeparatorConstant)
	return slashIndex == -1 || colonIndex < slashIndex
}

func parseHostedRemote(input string, protocol RemoteProtocol, remainder string) (RemoteURL, error) {
	authority, path, found := strings.Cut(remainder, urlPathSeparatorConstant)
	if !found {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	user, host := splitUser(authority)
	if len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner, repository, splitError := splitRepositoryPath(input, path)
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: protocol, User: user, Host: host, Owner: owner, Repository: repository}, nil
}

func parseScpLikeRemote(input string, remote string) (RemoteURL, error) {
	authority, path, _ := strings.Cut(remote, scpPathDelimiterConstant)
	user, host := splitUser(authority)
	if len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner, repository, splitError := splitRepositoryPath(input, path)
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, User: user, Host: host, Owner: owner, Repository: repository}, nil
}

func parseLocalRemote(input string, path string) (RemoteURL, error) {
	trimmedPath := strings.TrimRight(path, urlPathSeparatorConstant)
	separatorIndex := strings.LastIndex(trimmedPath, urlPathSeparatorConstant)
	repository := normalizeRepositoryName(trimmedPath[separatorIndex+1:])
	if len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner := ""
	if separatorIndex > 0 {
		owner = trimmedPath[:separatorIndex]
	}
	return RemoteURL{Protocol: RemoteProtocolFile, Owner: owner, Repository: repository}, nil
}

func splitUser(authority string) (string, string) {
	user, host, found := strings.Cut(authority, sshUserDelimiterConstant)
	if !found {
		return "", authority
	}
	return user, host
}

func splitRepositoryPath(input string, path string) (string, string, error) {
	segments := strings.Split(strings.Trim(path, urlPathSeparatorConstant), urlPathSeparatorConstant)
	if len(segments) < minimumRepositorySegmentsConstant {
		return "", "", RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	repository := normalizeRepositoryName(segments[len(segments)-1])
	owner := strings.Join(segments[:len(segments)-1], urlPathSeparatorConstant)
	if len(repository) == 0 || len(owner) == 0 {
		return "", "", RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return owner, repository, nil
}

func normalizeRepositoryName(repository string) string {
	return strings.TrimSuffix(repository, gitSuffixConstant)
}

// FormatRemoteURL renders remote back into a URL. SSH remotes use the scp-like form.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if len(strings.TrimSpace(remote.Repository)) == 0 {
		return "", RemoteURLParseError{Input: remote.Repository, Message: requiredValueMessageConstant}
	}

	repositoryPath := remote.Repository + gitSuffixConstant
	if len(remote.Owner) > 0 {
		repositoryPath = remote.Owner + urlPathSeparatorConstant + repositoryPath
	}
	authority := remote.Host
	if len(remote.User) > 0 {
		authority = remote.User + sshUserDelimiterConstant + remote.Host
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		if len(strings.TrimSpace(remote.Host)) == 0 {
			return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
		}
		return authority + scpPathDelimiterConstant + repositoryPath, nil
	case RemoteProtocolHTTPS:
		if len(strings.TrimSpace(remote.Host)) == 0 {
			return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
		}
		return httpsProtocolPrefixConstant + authority + urlPathSeparatorConstant + repositoryPath, nil
	case RemoteProtocolHTTP:
		if len(strings.TrimSpace(remote.Host)) == 0 {
			return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
		}
		return httpProtocolPrefixConstant + authority + urlPathSeparatorConstant + repositoryPath, nil
	case RemoteProtocolFile:
		return fileProtocolPrefixConstant + repositoryPath, nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
