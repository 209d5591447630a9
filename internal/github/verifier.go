package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
)

// Verifier checks submitted pull request links against the GitHub API.
type Verifier struct {
	client *gh.Client
}

// NewVerifier creates a Verifier. token may be empty for unauthenticated
// access (public repositories only, low rate limit).
func NewVerifier(token string, httpClient *http.Client) *Verifier {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Verifier{client: client}
}

// WithBaseURL points the client at another API root (GitHub Enterprise, tests).
func (v *Verifier) WithBaseURL(raw string) (*Verifier, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse github base url: %w", err)
	}
	v.client.BaseURL = u
	return v, nil
}

// Exists reports whether the referenced pull request exists. A 404 is a
// definite "no"; every other failure is returned as an error.
func (v *Verifier) Exists(ctx context.Context, ref domain.PullRequestRef) (bool, error) {
	if ref.Number <= 0 {
		return false, nil
	}
	_, resp, err := v.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("get pull request %s/%s#%d: %w", ref.Owner, ref.Repo, ref.Number, err)
}
