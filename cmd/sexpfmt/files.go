package main

import (
	"bytes"
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"pkt.systems/sexpfmt"
)

type fileResult struct {
	path    string
	changed bool
	err     error
}

// formatFiles formats each named file independently, at most jobs at a time.
// Result order matches paths; per-file failures land in the result rather
// than aborting the batch.
func formatFiles(ctx context.Context, paths []string, width, jobs int, check bool) ([]fileResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = formatFile(path, width, check)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// formatFile formats one file. With check set the file is left untouched and
// changed reports whether a rewrite would alter it; otherwise a differing
// file is rewritten in place, keeping its permission bits.
func formatFile(path string, width int, check bool) fileResult {
	res := fileResult{path: path}
	clean := normalizePath(path)
	data, err := os.ReadFile(clean)
	if err != nil {
		res.err = err
		return res
	}
	formatted, err := sexpfmt.FormatBytes(data, width)
	if err != nil {
		res.err = err
		return res
	}
	if bytes.Equal(data, formatted) {
		return res
	}
	res.changed = true
	if check {
		return res
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(clean); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(clean, formatted, mode.Perm()); err != nil {
		res.err = err
	}
	return res
}
