package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"
)

// Repo identifies one repository to scan.
type Repo struct {
	FullName     string // "owner/name"
	URL          string
	HasWorkflows bool
}

// Provider resolves org/user/explicit-repo selections into the concrete,
// ordered list of repositories a scan will cover.
type Provider struct {
	client *github.Client
}

// NewProvider builds a Provider backed by an authenticated GitHub client.
func NewProvider(ctx context.Context, token string) *Provider {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return &Provider{client: github.NewClient(tc)}
}

// Filter narrows a repository listing. Only wins over Exclude; both match on
// the bare repository name, not the owner prefix.
type Filter struct {
	Exclude      []string
	Only         []string
	IncludeForks bool
}

func (f Filter) keep(name string, fork bool) bool {
	if fork && !f.IncludeForks {
		return false
	}
	if len(f.Only) > 0 {
		for _, n := range f.Only {
			if n == name {
				return true
			}
		}
		return false
	}
	for _, n := range f.Exclude {
		if n == name {
			return false
		}
	}
	return true
}

// Org lists an organization's repositories, skipping archived ones and
// applying the filter. The returned order is the API listing order.
func (p *Provider) Org(ctx context.Context, org string, filter Filter) ([]Repo, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var repos []Repo
	for {
		page, resp, err := p.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, describeAPIError(err, fmt.Sprintf("organization %q", org))
		}
		for _, r := range page {
			if r.GetArchived() || !filter.keep(r.GetName(), r.GetFork()) {
				continue
			}
			repos = append(repos, p.describe(ctx, r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// User lists a user's repositories. An empty username means the
// authenticated user. Forks are excluded unless the filter includes them.
func (p *Provider) User(ctx context.Context, username string, filter Filter) ([]Repo, error) {
	opts := &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	if username == "" {
		me, _, err := p.client.Users.Get(ctx, "")
		if err != nil {
			return nil, describeAPIError(err, "authenticated user")
		}
		username = me.GetLogin()
	}

	var repos []Repo
	for {
		page, resp, err := p.client.Repositories.ListByUser(ctx, username, opts)
		if err != nil {
			return nil, describeAPIError(err, fmt.Sprintf("user %q", username))
		}
		for _, r := range page {
			if r.GetArchived() || !filter.keep(r.GetName(), r.GetFork()) {
				continue
			}
			repos = append(repos, p.describe(ctx, r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// Single resolves one repository given as "owner/name" or a full URL.
func (p *Provider) Single(ctx context.Context, ref string) (Repo, error) {
	owner, name, err := SplitFullName(ref)
	if err != nil {
		return Repo{}, err
	}
	r, _, err := p.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return Repo{}, describeAPIError(err, fmt.Sprintf("repository %q", ref))
	}
	return p.describe(ctx, r), nil
}

func (p *Provider) describe(ctx context.Context, r *github.Repository) Repo {
	return Repo{
		FullName:     r.GetFullName(),
		URL:          r.GetHTMLURL(),
		HasWorkflows: p.hasWorkflows(ctx, r.GetOwner().GetLogin(), r.GetName()),
	}
}

// hasWorkflows probes for a .github/workflows directory. A repository
// without workflows is not scanned; it scores clean by construction.
func (p *Provider) hasWorkflows(ctx context.Context, owner, name string) bool {
	_, dir, resp, err := p.client.Repositories.GetContents(ctx, owner, name, ".github/workflows", nil)
	if err != nil || resp.StatusCode != 200 {
		return false
	}
	return len(dir) > 0
}

// SplitFullName parses "owner/name", optionally wrapped in a github.com URL.
func SplitFullName(ref string) (owner, name string, err error) {
	path := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", "", fmt.Errorf("invalid repository URL %q: %w", ref, err)
		}
		path = u.Path
	}
	path = strings.TrimPrefix(path, "github.com/")

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository reference %q: want owner/name", ref)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

func describeAPIError(err error, subject string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		switch ghErr.Response.StatusCode {
		case 404:
			return fmt.Errorf("%s not found: check the name and your access", subject)
		case 403:
			return fmt.Errorf("no permission to access %s: check token scopes or rate limits", subject)
		case 401:
			return fmt.Errorf("invalid GitHub token: token needs 'repo' and 'read:org' scopes")
		}
	}
	return fmt.Errorf("GitHub API error for %s: %w", subject, err)
}
