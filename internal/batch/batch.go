// Package batch runs the pipeline over every supported file under a directory
// with a bounded pool of workers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/render"
)

// Processor is satisfied by *pipeline.Processor.
type Processor interface {
	Process(ctx context.Context, up pipeline.Upload, stage constants.Stage, format constants.ReportFormat) (*pipeline.Result, render.Artifact, error)
}

type Config struct {
	OutDir     string
	Stage      constants.Stage
	Format     constants.ReportFormat
	Languages  []string
	Extensions []string // default: every supported extension
	SkipHidden bool
	Workers    int
	Timeout    time.Duration // per file
}

type FileResult struct {
	Path      string
	Output    string
	RequestID string
	Err       string
}

type Stats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

type Runner struct {
	cfg    Config
	proc   Processor
	logger *slog.Logger
	exts   map[string]struct{}
}

type Option func(*Config)

func WithWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Workers = n
		}
	}
}

func WithFileTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

func New(cfg Config, proc Processor, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if cfg.Stage == "" {
		cfg.Stage = constants.StageStructuredResult
	}
	if cfg.Format == "" {
		cfg.Format = constants.FormatJSON
	}
	for _, o := range opts {
		o(&cfg)
	}

	exts := map[string]struct{}{}
	if len(cfg.Extensions) == 0 {
		for e := range constants.AllowedExtensions {
			exts[e] = struct{}{}
		}
	} else {
		for _, e := range cfg.Extensions {
			if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
				exts[e] = struct{}{}
			}
		}
	}
	return &Runner{cfg: cfg, proc: proc, logger: logger, exts: exts}
}

// Discover walks root and returns the matching files in walk order. Walk
// errors on individual entries are recorded as failed results.
func (r *Runner) Discover(root string) ([]string, []FileResult, Stats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, Stats{}, errors.New("root path is required")
	}

	var (
		paths  []string
		failed []FileResult
		stats  Stats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			failed = append(failed, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if r.cfg.SkipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := r.exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, failed, stats, fmt.Errorf("walk: %w", err)
	}
	return paths, failed, stats, nil
}

type job struct {
	idx  int
	path string
}

// Run processes every file Discover finds and writes one artifact per input
// under OutDir, mirroring the directory layout. A failing file does not stop
// the others. Results are returned in discovery order.
func (r *Runner) Run(ctx context.Context, root string) ([]FileResult, Stats, error) {
	start := time.Now()
	paths, failed, stats, err := r.Discover(root)
	if err != nil {
		return failed, stats, err
	}
	r.logger.Info("batch.discovered", "root", root, "matched", stats.Matched, "workers", r.cfg.Workers)

	results := make([]FileResult, len(paths))
	ch := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range ch {
				results[j.idx] = r.processOne(ctx, workerID, root, j.path)
			}
		}(i + 1)
	}

feed:
	for i, p := range paths {
		select {
		case ch <- job{idx: i, path: p}:
		case <-ctx.Done():
			for k := i; k < len(paths); k++ {
				results[k] = FileResult{Path: paths[k], Err: ctx.Err().Error()}
			}
			break feed
		}
	}
	close(ch)
	wg.Wait()

	for _, res := range results {
		if res.Err != "" {
			stats.Failed++
		} else {
			stats.Succeeded++
		}
	}
	r.logger.Info("batch.done",
		"root", root,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return append(failed, results...), stats, ctx.Err()
}

func (r *Runner) processOne(parent context.Context, workerID int, root, path string) FileResult {
	res := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err.Error()
		r.logger.Error("batch.read_failed", "worker_id", workerID, "path", path, "error", err)
		return res
	}

	ctx, cancel := context.WithTimeout(parent, r.cfg.Timeout)
	defer cancel()
	out, art, err := r.proc.Process(ctx, pipeline.Upload{
		Name:      filepath.Base(path),
		MediaType: constants.MediaTypeForExt(filepath.Ext(path)),
		Data:      data,
		Languages: r.cfg.Languages,
	}, r.cfg.Stage, r.cfg.Format)
	if out != nil {
		res.RequestID = out.RequestID
	}
	if err != nil {
		res.Err = err.Error()
		r.logger.Error("batch.process_failed", "worker_id", workerID, "path", path, "error", err)
		return res
	}

	dest, err := r.outputPath(root, path, art.Filename)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		res.Err = err.Error()
		return res
	}
	if err := os.WriteFile(dest, art.Data, 0o644); err != nil {
		res.Err = err.Error()
		r.logger.Error("batch.write_failed", "worker_id", workerID, "path", dest, "error", err)
		return res
	}
	res.Output = dest
	r.logger.Info("batch.file_ok", "worker_id", workerID, "path", path, "output", dest, "req_id", res.RequestID)
	return res
}

// outputPath maps <root>/a/b.pdf to <OutDir>/a/b.pdf.<artifact ext>.
func (r *Runner) outputPath(root, path, artifactName string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	outDir := r.cfg.OutDir
	if outDir == "" {
		outDir = root
	}
	return filepath.Join(outDir, rel+filepath.Ext(artifactName)), nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
