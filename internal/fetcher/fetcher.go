// Package fetcher runs the sequential chapter download: resolve the
// chapter, pick a group, fetch the page list and write one file per
// page.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/cubarid/internal/cubari"
	"github.com/brogergvhs/cubarid/internal/ui"
	"github.com/brogergvhs/cubarid/internal/util"
)

const DefaultPageTimeout = 30 * time.Second

var (
	ErrEmptyPageList      = errors.New("no pages in chapter")
	ErrNoPagesDownloaded  = errors.New("no pages downloaded")
	ErrGroupKeyNotPresent = errors.New("requested group not present")
)

// Progress receives page loop updates. ui.ProgressBar satisfies it.
type Progress interface {
	SetTotal(total int)
	Update(done, total int, bytes int64)
	MarkDone()
}

// Options configure a single FetchChapter call.
type Options struct {
	// OutputDir is the base folder the chapter folder is created in.
	OutputDir string

	// GroupKey forces a specific group instead of the default
	// primary-then-smallest selection.
	GroupKey string

	// PreferredGroup replaces the primary group key in the default
	// selection. Empty means cubari.PrimaryGroupKey.
	PreferredGroup string

	// SelectGroup, when set, is consulted if the chapter offers more
	// than one group. It receives the keys in sorted order.
	SelectGroup func(keys []string) (string, error)

	// NewProgress, when set, is called once the page count is known.
	NewProgress func(prefix string) Progress
}

// Result describes a finished (possibly partial) chapter download.
type Result struct {
	Dir        string
	GroupKey   string
	Downloaded int
	Total      int
	Bytes      int64
}

type Fetcher struct {
	api     *cubari.Client
	client  *http.Client
	log     *ui.Logger
	timeout time.Duration
}

func New(api *cubari.Client, client *http.Client, log *ui.Logger, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}

	return &Fetcher{
		api:     api,
		client:  client,
		log:     log,
		timeout: timeout,
	}
}

// FetchChapter downloads one chapter into a folder under
// opts.OutputDir and returns its path. A single failed page is logged
// and skipped; the call fails only when the metadata lookups fail or
// no page at all could be written, in which case no chapter folder is
// left behind.
func (f *Fetcher) FetchChapter(ctx context.Context, slug, chapter string, opts Options) (*Result, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output folder: %w", err)
	}

	series, err := f.api.GetSeries(ctx, slug)
	if err != nil {
		return nil, err
	}

	ch, ok := series.Chapters[chapter]
	if !ok {
		return nil, fmt.Errorf("chapter %s of series %s: %w", chapter, slug, cubari.ErrChapterNotFound)
	}

	groupKey, err := f.pickGroup(ch, opts)
	if err != nil {
		return nil, fmt.Errorf("chapter %s: %w", chapter, err)
	}
	preferred := opts.PreferredGroup
	if preferred == "" {
		preferred = cubari.PrimaryGroupKey
	}
	if groupKey != preferred {
		f.log.Infof("Using group: %s\n", groupKey)
	}

	pages, err := f.api.GetPages(ctx, ch.Groups[groupKey])
	if err != nil {
		return nil, fmt.Errorf("chapter %s: %w", chapter, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("chapter %s: %w", chapter, ErrEmptyPageList)
	}

	f.log.Infof("Found %d pages for chapter %s.\n", len(pages), chapter)

	dir := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_Chapter_%s", util.SanitizeSlug(slug), chapter))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create chapter folder: %w", err)
	}

	var ph Progress
	if opts.NewProgress != nil {
		ph = opts.NewProgress("Ch." + chapter)
		ph.SetTotal(len(pages))
	}

	res := &Result{Dir: dir, GroupKey: groupKey, Total: len(pages)}

	for i, pageURL := range pages {
		page := i + 1
		f.log.Debugf("Downloading page %d/%d from %s\n", page, len(pages), pageURL)

		path, n, err := f.downloadPage(ctx, pageURL, dir, page)
		if err != nil {
			f.log.Errorf("Failed to download page %d: %v\n", page, err)
		} else {
			res.Downloaded++
			res.Bytes += n
			f.log.Debugf("Saved page %d to %s\n", page, path)
		}

		if ph != nil {
			ph.Update(page, len(pages), res.Bytes)
		}
	}

	if ph != nil {
		ph.MarkDone()
	}

	if res.Downloaded == 0 {
		if err := os.Remove(dir); err != nil {
			f.log.Errorf("Could not remove directory %s: %v\n", dir, err)
		}
		return nil, fmt.Errorf("chapter %s: %w", chapter, ErrNoPagesDownloaded)
	}

	f.log.Infof("Downloaded %d/%d pages for chapter %s to %s\n", res.Downloaded, res.Total, chapter, dir)
	return res, nil
}

func (f *Fetcher) pickGroup(ch cubari.Chapter, opts Options) (string, error) {
	if opts.GroupKey != "" {
		if _, ok := ch.Groups[opts.GroupKey]; !ok {
			return "", fmt.Errorf("group %q: %w", opts.GroupKey, ErrGroupKeyNotPresent)
		}
		return opts.GroupKey, nil
	}

	if opts.SelectGroup != nil && len(ch.Groups) > 1 {
		return opts.SelectGroup(ch.GroupKeys())
	}

	return ch.SelectGroup(opts.PreferredGroup)
}

func (f *Fetcher) downloadPage(ctx context.Context, url, dir string, page int) (string, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	ext := util.ExtensionFromContentType(resp.Header.Get("Content-Type"))
	path := filepath.Join(dir, fmt.Sprintf("page_%03d.%s", page, ext))

	out, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		// a truncated file must not count as a downloaded page
		_ = os.Remove(path)
		return "", 0, err
	}

	return path, written, nil
}
