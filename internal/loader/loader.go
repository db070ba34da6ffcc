// Package loader bulk-imports catalog, user and review data from CSV files.
//
// Files are read in dependency order so that every reference points at a row
// already stored. Each row is a get-or-create keyed by its id: rows that
// exist are counted as skipped and never overwritten.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/ports"
	"github.com/yamdb/reviewhub/internal/infrastructure/metrics"
	"github.com/yamdb/reviewhub/internal/infrastructure/queue"
)

// seedFunc stores one parsed row and reports whether it was new.
type seedFunc func(ctx context.Context, s ports.Seeder, row []string) (bool, error)

type table struct {
	name     string
	file     string
	columns  int
	optional bool
	seed     seedFunc
}

// tables lists the import order. A table only references tables above it.
var tables = []table{
	{name: "categories", file: "category.csv", columns: 3, seed: seedCategory},
	{name: "genres", file: "genre.csv", columns: 3, seed: seedGenre},
	{name: "titles", file: "titles.csv", columns: 4, seed: seedTitle},
	{name: "title_genres", file: "genre_title.csv", columns: 3, optional: true, seed: seedTitleGenre},
	{name: "users", file: "users.csv", columns: 2, seed: seedUser},
	{name: "reviews", file: "review.csv", columns: 6, seed: seedReview},
	{name: "comments", file: "comments.csv", columns: 5, seed: seedComment},
}

// Result is the outcome of one table.
type Result struct {
	Table   string
	Created int64
	Skipped int64
}

// Loader imports a directory of CSV files through a ports.Seeder.
type Loader struct {
	seeder     ports.Seeder
	dispatcher *queue.Dispatcher
	log        zerolog.Logger
}

func New(seeder ports.Seeder, dispatcher *queue.Dispatcher, log zerolog.Logger) *Loader {
	return &Loader{seeder: seeder, dispatcher: dispatcher, log: log}
}

// LoadDir imports every known file found in dir and then advances the
// store's id sequences past the imported ids. It stops at the first table
// that fails.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]Result, error) {
	results := make([]Result, 0, len(tables))
	for _, t := range tables {
		res, err := l.loadTable(ctx, dir, t)
		if errors.Is(err, os.ErrNotExist) && t.optional {
			l.log.Info().Str("file", t.file).Msg("optional file missing, skipped")
			continue
		}
		if err != nil {
			return results, err
		}
		l.log.Info().
			Str("table", res.Table).
			Int64("created", res.Created).
			Int64("skipped", res.Skipped).
			Msg("table loaded")
		results = append(results, res)
	}

	if err := l.seeder.SyncSequences(ctx); err != nil {
		return results, fmt.Errorf("sync sequences: %w", err)
	}
	return results, nil
}

func (l *Loader) loadTable(ctx context.Context, dir string, t table) (Result, error) {
	rows, err := readRows(filepath.Join(dir, t.file), t.columns)
	if err != nil {
		return Result{Table: t.name}, err
	}

	var created, skipped atomic.Int64
	tasks := make([]queue.Task, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // header is line 1
		tasks = append(tasks, queue.Task{
			Key: row[0],
			Run: func(ctx context.Context) error {
				ok, err := t.seed(ctx, l.seeder, row)
				if err != nil {
					metrics.LoaderRowsTotal.WithLabelValues(t.name, "error").Inc()
					return fmt.Errorf("%s line %d: %w", t.file, line, err)
				}
				if ok {
					created.Add(1)
					metrics.LoaderRowsTotal.WithLabelValues(t.name, "created").Inc()
				} else {
					skipped.Add(1)
					metrics.LoaderRowsTotal.WithLabelValues(t.name, "skipped").Inc()
				}
				return nil
			},
		})
	}

	err = l.dispatcher.Run(ctx, tasks)
	res := Result{Table: t.name, Created: created.Load(), Skipped: skipped.Load()}
	if err != nil {
		return res, fmt.Errorf("load %s: %w", t.name, err)
	}
	return res, nil
}

// readRows returns the data rows of path, without the header. Every row must
// carry at least columns fields.
func readRows(path string, columns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: read header: %w", filepath.Base(path), err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if len(rec) < columns {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: want %d columns, got %d", filepath.Base(path), line, columns, len(rec))
		}
		rows = append(rows, rec)
	}
}
