package github

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

const (
	defaultTimeout = 10 * time.Minute
	listPerPage    = 100
	maxListPages   = 50
)

// Client calls GitHub Actions artifact endpoints by absolute URL, as given in
// webhook payloads and artifact listings
type Client struct {
	httpClient *http.Client
}

// Option is a functional option for Client
type Option func(*Client)

// WithTimeout sets the overall timeout of a single request, including
// reading the body
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new artifact client
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) api() *github.Client {
	gh := github.NewClient(c.httpClient)
	gh.UserAgent = types.UserAgent
	return gh
}

// newRequest builds a GET request carrying token as bearer credential. The
// header is set on the request rather than the transport so that net/http
// drops it when a redirect leaves the original host.
func newRequest(gh *github.Client, token, urlStr string) (*http.Request, error) {
	req, err := gh.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", urlStr))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// ListArtifacts fetches all pages of the artifact listing at artifactsURL.
// Listing stops at a page without artifacts or after maxListPages pages.
func (c *Client) ListArtifacts(ctx context.Context, token, artifactsURL string) ([]*model.ArtifactEntry, error) {
	base, err := url.Parse(artifactsURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid artifacts URL", goerr.V("url", artifactsURL))
	}

	gh := c.api()
	var entries []*model.ArtifactEntry

	for page := 1; page != 0; {
		if page > maxListPages {
			return nil, goerr.New("too many artifact pages",
				goerr.V("url", artifactsURL),
				goerr.V("max_pages", maxListPages))
		}

		pageURL := *base
		query := pageURL.Query()
		query.Set("per_page", strconv.Itoa(listPerPage))
		query.Set("page", strconv.Itoa(page))
		pageURL.RawQuery = query.Encode()

		list, next, err := c.listPage(ctx, gh, token, pageURL.String())
		if err != nil {
			return nil, err
		}
		if len(list.Artifacts) == 0 {
			break
		}

		for _, artifact := range list.Artifacts {
			entries = append(entries, &model.ArtifactEntry{
				Name:               artifact.GetName(),
				ArchiveDownloadURL: artifact.GetArchiveDownloadURL(),
			})
		}

		page = next
	}

	return entries, nil
}

// listPage fetches one page. Unlike Do, an empty body is an error.
func (c *Client) listPage(ctx context.Context, gh *github.Client, token, pageURL string) (*github.ArtifactList, int, error) {
	req, err := newRequest(gh, token, pageURL)
	if err != nil {
		return nil, 0, err
	}

	resp, err := gh.BareDo(ctx, req)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list artifacts",
			goerr.V("url", pageURL),
			goerr.V("status", statusCode(resp)))
	}
	defer resp.Body.Close()

	var list github.ArtifactList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, 0, goerr.Wrap(err, "failed to decode artifact list",
			goerr.V("url", pageURL),
			goerr.V("status", statusCode(resp)))
	}

	return &list, resp.NextPage, nil
}

// DownloadArtifact downloads the archive at downloadURL. Redirects to blob
// storage are followed; the Authorization header is not forwarded to other hosts.
func (c *Client) DownloadArtifact(ctx context.Context, token, downloadURL string) ([]byte, error) {
	if downloadURL == "" {
		return nil, goerr.New("download URL is empty")
	}

	gh := c.api()
	req, err := newRequest(gh, token, downloadURL)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	resp, err := gh.Do(ctx, req, &buf)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download artifact",
			goerr.V("url", downloadURL),
			goerr.V("status", statusCode(resp)))
	}

	return buf.Bytes(), nil
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
