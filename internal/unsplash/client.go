package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ohhboi427/backdrop/internal/errutil"
)

const apiBase = "https://api.unsplash.com"

var (
	// ErrMissingAccessKey is returned when no API access key is configured.
	ErrMissingAccessKey = errors.New("missing access key")

	// ErrUpstreamUnavailable is returned when the API cannot be reached at
	// the transport level.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedResponse is returned when a response body cannot be
	// decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is returned when the API responds with a non-2xx status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Client talks to an Unsplash-compatible photo catalog.
//
// BaseURL defaults to the public API and is overridable for tests.
type Client struct {
	HTTP    *http.Client
	BaseURL string

	accessKey string
}

// NewClient creates a Client authenticating with the given access key.
// If httpClient is nil, a client with a 30s timeout is used.
func NewClient(accessKey string, httpClient *http.Client) (*Client, error) {
	if accessKey == "" {
		return nil, ErrMissingAccessKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		HTTP:      httpClient,
		BaseURL:   apiBase,
		accessKey: accessKey,
	}, nil
}

// FindTopic resolves a topic id or slug into a Topic.
func (c *Client) FindTopic(ctx context.Context, idOrSlug string) (Topic, error) {
	var topic Topic
	u := fmt.Sprintf("%s/topics/%s", c.BaseURL, url.PathEscape(idOrSlug))
	if err := c.getJSON(ctx, u, nil, &topic); err != nil {
		return Topic{}, err
	}
	return topic, nil
}

// Random asks the catalog for a random selection of photos matching the
// criteria.
func (c *Client) Random(ctx context.Context, crit Criteria) ([]Photo, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(crit.Count))
	switch {
	case crit.Topic != "":
		params.Set("topics", crit.Topic)
	case crit.Query != "":
		params.Set("query", crit.Query)
	}

	var photos []Photo
	if err := c.getJSON(ctx, c.BaseURL+"/photos/random", params, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// Download fetches the content of one photo.
//
// The photo's download location is requested first and its response
// discarded; the API requires this signal before the content fetch. Only
// after it succeeds is the file URL fetched, with the format and, for a
// custom quality, the resize parameters appended.
func (c *Client) Download(ctx context.Context, photo Photo, quality Quality, format string) ([]byte, error) {
	track, err := c.get(ctx, photo.DownloadLocation())
	if err != nil {
		return nil, fmt.Errorf("download tracking: %w", err)
	}
	drain(track)

	u, err := url.Parse(photo.FileURL())
	if err != nil {
		return nil, fmt.Errorf("%w: bad file url: %w", ErrMalformedResponse, err)
	}
	params := u.Query()
	params.Set("fm", format)
	if !quality.IsOriginal() {
		params.Set("w", strconv.FormatUint(uint64(quality.Width), 10))
		params.Set("h", strconv.FormatUint(uint64(quality.Height), 10))
		params.Set("fit", "min")
	}
	u.RawQuery = params.Encode()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer func() {
		errutil.LogMsg(resp.Body.Close(), "Failed to close response body")
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return data, nil
}

// get issues an authenticated GET and maps transport and status failures
// onto the client's error taxonomy. The response body is open on success.
func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		drain(resp)
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, u string, params url.Values, v any) error {
	if len(params) > 0 {
		u = u + "?" + params.Encode()
	}
	resp, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	defer func() {
		errutil.LogMsg(resp.Body.Close(), "Failed to close response body")
	}()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	errutil.LogMsg(resp.Body.Close(), "Failed to close response body")
}
