package util

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

func SetupInterruptHandler(outputDir string) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cleaning up...")

		CleanupEmptyChapterDirs(outputDir)
		fmt.Println("Exiting due to interrupt.")

		os.Exit(1)
	}()
}

// CleanupEmptyChapterDirs removes chapter folders that never received a
// page. A folder with even one downloaded page is left alone.
func CleanupEmptyChapterDirs(outputDir string) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return
	}

	for _, e := range entries {
		if !e.IsDir() || !strings.Contains(e.Name(), "_Chapter_") {
			continue
		}

		full := filepath.Join(outputDir, e.Name())
		inner, err := os.ReadDir(full)
		if err != nil || len(inner) > 0 {
			continue
		}

		if err := os.Remove(full); err != nil {
			fmt.Fprintf(os.Stderr, "Could not remove %s: %v\n", full, err)
		} else {
			fmt.Printf("Removed empty chapter folder: %s\n", full)
		}
	}
}
