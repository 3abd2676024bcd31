// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// BatchResult holds the outcome of a batch publish run.
type BatchResult struct {
	Published int
	Skipped   int
	Failed    int
}

// Total returns the total number of notebooks processed.
func (r BatchResult) Total() int {
	return r.Published + r.Skipped + r.Failed
}

// HasFailures reports whether any notebooks failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// PublishTree walks the tree rooted at root and publishes every notebook in
// it, printing per-file status to w and returning a summary. Symbolic links
// are not followed. Already-converted output and non-notebook files are
// filtered out before conversion; every other outcome is per-file and never
// aborts the walk.
func (p *Publisher) PublishTree(ctx context.Context, root string, w io.Writer) (BatchResult, error) {
	var result BatchResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
			result.Failed++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != notebookExt {
			return nil
		}
		if strings.Contains(path, convertedMarker) {
			fmt.Fprintf(w, "skipped:   %s (already converted)\n", path)
			result.Skipped++
			return nil
		}

		switch p.PublishOne(ctx, path, w) {
		case StatusPublished:
			result.Published++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walking %s: %w", root, err)
	}

	fmt.Fprintf(w, "\nBatch summary: %d published, %d skipped, %d failed (total: %d)\n",
		result.Published, result.Skipped, result.Failed, result.Total())
	return result, nil
}
