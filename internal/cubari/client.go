// Package cubari talks to the cubari.moe read API: one endpoint for
// series metadata, one per-chapter endpoint (referenced from the
// metadata) for the page list.
package cubari

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	DefaultBaseURL = "https://cubari.moe"

	// PrimaryGroupKey is the group preferred when a chapter has
	// several page-list sources.
	PrimaryGroupKey = "1"
)

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrNoGroups        = errors.New("no groups for chapter")
	ErrBadPageList     = errors.New("unexpected page list document")
)

type Series struct {
	Slug     string             `json:"slug"`
	Title    string             `json:"title"`
	Chapters map[string]Chapter `json:"chapters"`
}

type Chapter struct {
	Volume string `json:"volume"`
	Title  string `json:"title"`

	// Groups maps a scanlation group key to the URL of that group's
	// page-list document, usually a path relative to the site root.
	Groups map[string]string `json:"groups"`
}

// GroupKeys returns the chapter's group keys sorted lexicographically.
func (c Chapter) GroupKeys() []string {
	keys := lo.Keys(c.Groups)
	sort.Strings(keys)
	return keys
}

// SelectGroup picks the page-list source for a chapter: the preferred
// group when present, otherwise the lexicographically smallest key.
func (c Chapter) SelectGroup(preferred string) (string, error) {
	if preferred == "" {
		preferred = PrimaryGroupKey
	}

	if _, ok := c.Groups[preferred]; ok {
		return preferred, nil
	}

	keys := c.GroupKeys()
	if len(keys) == 0 {
		return "", ErrNoGroups
	}

	return keys[0], nil
}

type logger interface {
	Debugf(string, ...any)
	Infof(string, ...any)
}

type Client struct {
	client  *http.Client
	baseURL string
	log     logger
}

func NewClient(c *http.Client, baseURL string, log logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		client:  c,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
	}
}

// GetSeries fetches the series metadata document for a slug. Network
// failures and non-2xx responses are fatal for the run.
func (c *Client) GetSeries(ctx context.Context, slug string) (*Series, error) {
	url := fmt.Sprintf("%s/read/api/weebcentral/series/%s/", c.baseURL, slug)
	c.log.Infof("Fetching series data from: %s\n", url)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", slug, err)
	}

	var s Series
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("series %s: decode: %w", slug, err)
	}

	c.log.Infof("Successfully fetched series data.\n")
	return &s, nil
}

// GetPages fetches a group's page-list document and returns the page
// URLs in order. The document is either a bare JSON array of URLs or
// an object carrying a "pages" array; anything else is ErrBadPageList.
func (c *Client) GetPages(ctx context.Context, groupURL string) ([]string, error) {
	url := c.resolve(groupURL)
	c.log.Infof("Fetching chapter details from: %s\n", url)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("page list: %w", err)
	}

	pages, err := decodePageList(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Successfully fetched chapter details.\n")
	return pages, nil
}

func decodePageList(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrBadPageList
	}

	switch trimmed[0] {
	case '[':
		var pages []string
		if err := json.Unmarshal(trimmed, &pages); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPageList, err)
		}
		return pages, nil

	case '{':
		var doc struct {
			Pages []string `json:"pages"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPageList, err)
		}
		return doc.Pages, nil
	}

	return nil, ErrBadPageList
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// resolve joins a group URL from the metadata with the API base when
// it is a site-relative path.
func (c *Client) resolve(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}

	return c.baseURL + raw
}
