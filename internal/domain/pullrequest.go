package domain

import (
	"regexp"
	"strconv"
)

// pullRequestRe matches https://github.com/<owner>/<repo>/pull/<number> anywhere in a text.
var pullRequestRe = regexp.MustCompile(`https://github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)/pull/(\d+)`)

// PullRequestRef identifies a GitHub pull request found in a chat message.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
	URL    string
}

// FindPullRequest returns the first pull request link in text.
func FindPullRequest(text string) (PullRequestRef, bool) {
	m := pullRequestRe.FindStringSubmatch(text)
	if m == nil {
		return PullRequestRef{}, false
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		// digits overflowing int are still a link by shape
		n = 0
	}
	return PullRequestRef{Owner: m[1], Repo: m[2], Number: n, URL: m[0]}, true
}

// HasPullRequest reports whether text contains a pull request link.
func HasPullRequest(text string) bool {
	return pullRequestRe.MatchString(text)
}
