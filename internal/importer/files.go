// Package importer feeds brokerage exports on disk into the portfolio.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
	"github.com/bobmcallan/vire-folio/internal/portfolio"
)

// Importer is the part of portfolio.Service the file importer needs.
type Importer interface {
	Import(ctx context.Context, data []byte, filename string) (*portfolio.ImportResult, error)
}

// FileResult is the outcome for one file. Err is set when the file was
// rejected; Result is set when it was imported.
type FileResult struct {
	Path   string
	Result *portfolio.ImportResult
	Err    error
}

// ExpandPaths replaces each directory in paths with the .csv files it
// contains, sorted by name. Plain files are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		var files []string
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				continue
			}
			files = append(files, filepath.Join(p, e.Name()))
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}

// ImportFiles imports each file in order. A file the parser rejects is
// recorded and skipped; any other error stops the run and is returned along
// with the results so far.
func ImportFiles(ctx context.Context, svc Importer, logger *common.Logger, paths ...string) ([]FileResult, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return results, fmt.Errorf("failed to read %s: %w", path, err)
		}

		res, err := svc.Import(ctx, data, filepath.Base(path))
		if err != nil {
			var perr *normalizer.ParseError
			if errors.As(err, &perr) {
				logger.Warn().Str("path", path).Str("reason", perr.Reason).Msg("file skipped")
				results = append(results, FileResult{Path: path, Err: err})
				continue
			}
			return results, fmt.Errorf("failed to import %s: %w", path, err)
		}

		logger.Info().Str("path", path).Str("type", string(res.FileType)).
			Int("added", res.Stats.TransactionsAdded+res.Stats.DividendsAdded).
			Msg("file imported")
		results = append(results, FileResult{Path: path, Result: res})
	}
	return results, nil
}
