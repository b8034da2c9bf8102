// Package gitinfo reads repository metadata used to link markers back to a
// hosted copy of the source.
package gitinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"codelinks/internal/logging"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"
)

// urlTemplates maps a host kind to a blob URL layout.
var urlTemplates = map[string]string{
	"github": "https://github.com/{owner}/{repo}/blob/{rev}/{path}#L{lineno}",
	"gitlab": "https://gitlab.com/{owner}/{repo}/-/blob/{rev}/{path}#L{lineno}",
}

// Info describes the repository a source tree belongs to.
type Info struct {
	// Root is the absolute work tree directory.
	Root string
	// RemoteURL is the raw URL of the "origin" remote; empty if unset.
	RemoteURL string
	// Revision is the HEAD commit hash; empty for an unborn branch.
	Revision string
}

// Detect opens the repository containing dir. It returns nil without error when
// dir is not inside a git work tree.
func Detect(dir string) (*Info, error) {
	log := logging.Get(logging.CategoryGit)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			log.Warn("git root is not found", zap.String("dir", abs))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open work tree: %w", err)
	}
	info := &Info{Root: wt.Filesystem.Root()}

	if origin, err := repo.Remote("origin"); err == nil {
		if urls := origin.Config().URLs; len(urls) > 0 {
			info.RemoteURL = urls[0]
		}
	} else {
		log.Debug("no origin remote", zap.Error(err))
	}

	if head, err := repo.Head(); err == nil {
		info.Revision = head.Hash().String()
	} else {
		log.Debug("failed to get repo HEAD", zap.Error(err))
	}
	return info, nil
}

// FileURL returns the hosted URL of path at line, or "" when the remote is
// missing or its host is unknown.
func (i *Info) FileURL(path string, line int) string {
	if i == nil || i.RemoteURL == "" || i.Revision == "" {
		return ""
	}
	remote, err := ParseRemote(i.RemoteURL)
	if err != nil {
		return ""
	}
	tmpl, ok := urlTemplates[remote.Kind]
	if !ok {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(i.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return strings.NewReplacer(
		"{owner}", remote.Owner,
		"{repo}", remote.Repo,
		"{rev}", i.Revision,
		"{path}", filepath.ToSlash(rel),
		"{lineno}", fmt.Sprint(line),
	).Replace(tmpl)
}

// Remote is a parsed hosting remote.
type Remote struct {
	Host  string
	Kind  string // github, gitlab or ""
	Owner string
	Repo  string
}

// ParseRemote understands https, ssh and scp-like ("git@host:owner/repo.git") URLs.
// Local file remotes are rejected.
func ParseRemote(raw string) (Remote, error) {
	ep, err := transport.NewEndpoint(strings.TrimSpace(raw))
	if err != nil {
		return Remote{}, fmt.Errorf("failed to parse remote url: %w", err)
	}
	if ep.Protocol == "file" || ep.Host == "" {
		return Remote{}, fmt.Errorf("unsupported remote url %q", raw)
	}

	path := strings.TrimSuffix(strings.Trim(ep.Path, "/"), ".git")
	owner, repo, ok := cutLast(path, "/")
	if !ok || owner == "" || repo == "" {
		return Remote{}, fmt.Errorf("remote url %q has no owner/repo path", raw)
	}

	r := Remote{Host: ep.Host, Owner: owner, Repo: repo}
	switch {
	case strings.Contains(ep.Host, "github"):
		r.Kind = "github"
	case strings.Contains(ep.Host, "gitlab"):
		r.Kind = "gitlab"
	}
	return r, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
