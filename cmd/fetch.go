package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/cubarid/internal/config"
	"github.com/brogergvhs/cubarid/internal/cubari"
	"github.com/brogergvhs/cubarid/internal/fetcher"
	"github.com/brogergvhs/cubarid/internal/ui"
	"github.com/brogergvhs/cubarid/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	flagOutputDir   string
	flagGroup       string
	flagSelectGroup bool
	flagNoProgress  bool
)

func init() {
	fetchCmd := &cobra.Command{
		Use:   "fetch <series-slug> <chapter-number>",
		Short: "Download all pages of one chapter into a folder",
		Long: `Download the page images of a single chapter from cubari.moe.

The chapter number is matched as a string, so fractional chapters like
1128.5 work. On success the last stdout line is DOWNLOAD_PATH:<path>,
for calling processes to parse. A chapter with some failed pages still
counts as a success; only a chapter with zero downloaded pages fails.`,
		Args: cobra.ExactArgs(2),
		RunE: runFetch,
	}

	fetchCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "base folder for the chapter folder (default \".\")")
	fetchCmd.Flags().StringVar(&flagGroup, "group", "", "force a specific group key")
	fetchCmd.Flags().BoolVar(&flagSelectGroup, "select-group", false, "pick the group interactively when there is more than one")
	fetchCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "disable the progress bar")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	slug, chapter := args[0], args[1]

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		OutputDir:    flagOutputDir,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	logSvc.Debugf("Config file: %s\n", usedPath)

	client := util.NewHTTPClient(util.HTTPClientOptions{
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		DebugLogger: logSvc,
	})

	api := cubari.NewClient(client, cfg.APIBase, logSvc)
	f := fetcher.New(api, client, logSvc, time.Duration(cfg.PageTimeout)*time.Second)

	util.SetupInterruptHandler(cfg.OutputDir)

	opts := fetcher.Options{
		OutputDir:      cfg.OutputDir,
		GroupKey:       flagGroup,
		PreferredGroup: cfg.PreferredGroup,
	}

	if flagSelectGroup {
		opts.SelectGroup = promptGroup
	}

	if !flagNoProgress {
		opts.NewProgress = func(prefix string) fetcher.Progress {
			return ui.NewProgressBar(prefix)
		}
	}

	start := time.Now()

	res, err := f.FetchChapter(context.Background(), slug, chapter, opts)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Pages: %d/%d\n", res.Downloaded, res.Total)
	fmt.Printf("Data:  %s\n", util.Human(res.Bytes))
	fmt.Printf("Time:  %s\n", time.Since(start).Round(time.Second))
	fmt.Println()
	fmt.Printf("DOWNLOAD_PATH:%s\n", res.Dir)

	return nil
}

func promptGroup(keys []string) (string, error) {
	prompt := promptui.Select{
		Label: "Select group",
		Items: keys,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("group selection aborted: %w", err)
	}

	return keys[idx], nil
}
