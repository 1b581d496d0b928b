package cubari

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brogergvhs/cubarid/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, ui.NewLogger(false))
}

func TestGetSeries(t *testing.T) {
	t.Run("decodes metadata", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/read/api/weebcentral/series/one-piece/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"slug": "one-piece",
				"title": "One Piece",
				"chapters": {
					"1128.5": {"volume": "1", "title": "SBS", "groups": {"1": "/read/api/weebcentral/chapter/xyz/"}}
				}
			}`))
		}))

		s, err := c.GetSeries(context.Background(), "one-piece")
		require.NoError(t, err)
		assert.Equal(t, "One Piece", s.Title)

		ch, ok := s.Chapters["1128.5"]
		require.True(t, ok)
		assert.Equal(t, "/read/api/weebcentral/chapter/xyz/", ch.Groups["1"])
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := c.GetSeries(context.Background(), "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 404")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))

		_, err := c.GetSeries(context.Background(), "broken")
		require.Error(t, err)
	})
}

func TestGetPages(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/read/api/weebcentral/chapter/xyz/", r.URL.Path)
			w.Write([]byte(`["https://proxy/1.jpg", "https://proxy/2.jpg"]`))
		}))

		pages, err := c.GetPages(context.Background(), "/read/api/weebcentral/chapter/xyz/")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://proxy/1.jpg", "https://proxy/2.jpg"}, pages)
	})

	t.Run("object with pages field", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"pages": ["https://proxy/1.jpg"]}`))
		}))

		pages, err := c.GetPages(context.Background(), "/chapter/")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://proxy/1.jpg"}, pages)
	})

	t.Run("unexpected shape", func(t *testing.T) {
		for name, body := range map[string]string{
			"scalar":         `"just a string"`,
			"number":         `42`,
			"empty body":     ``,
			"array of maps":  `[{"url": "x"}]`,
			"pages not urls": `{"pages": [1, 2, 3]}`,
		} {
			t.Run(name, func(t *testing.T) {
				c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(body))
				}))

				_, err := c.GetPages(context.Background(), "/chapter/")
				require.ErrorIs(t, err, ErrBadPageList)
			})
		}
	})

	t.Run("absolute group URL bypasses the base", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`["https://proxy/1.jpg"]`))
		}))
		defer srv.Close()

		c := NewClient(srv.Client(), "https://cubari.moe", ui.NewLogger(false))

		pages, err := c.GetPages(context.Background(), srv.URL+"/anything")
		require.NoError(t, err)
		assert.Len(t, pages, 1)
	})
}

func TestSelectGroup(t *testing.T) {
	t.Run("primary wins", func(t *testing.T) {
		ch := Chapter{Groups: map[string]string{"1": "/a", "2": "/b"}}

		key, err := ch.SelectGroup("")
		require.NoError(t, err)
		assert.Equal(t, "1", key)
	})

	t.Run("preferred override wins", func(t *testing.T) {
		ch := Chapter{Groups: map[string]string{"1": "/a", "7": "/b"}}

		key, err := ch.SelectGroup("7")
		require.NoError(t, err)
		assert.Equal(t, "7", key)
	})

	t.Run("fallback is the lexicographically smallest key", func(t *testing.T) {
		ch := Chapter{Groups: map[string]string{"4": "/a", "10": "/b", "7": "/c"}}

		key, err := ch.SelectGroup("")
		require.NoError(t, err)
		assert.Equal(t, "10", key)
	})

	t.Run("no groups", func(t *testing.T) {
		ch := Chapter{Groups: map[string]string{}}

		_, err := ch.SelectGroup("")
		require.ErrorIs(t, err, ErrNoGroups)
	})
}

func TestGroupKeys(t *testing.T) {
	ch := Chapter{Groups: map[string]string{"b": "/1", "a": "/2", "c": "/3"}}
	assert.Equal(t, []string{"a", "b", "c"}, ch.GroupKeys())
}
