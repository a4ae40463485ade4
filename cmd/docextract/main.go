package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/batch"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/render"
)

func main() {
	format := flag.String("format", "json", "output format: "+strings.Join(constants.FormatNames(), "|"))
	source := flag.String("source", "structured", "payload to render: structured|extracted")
	langs := flag.String("lang", "", "OCR languages, comma separated (default from config)")
	out := flag.String("o", "", "output file, or output directory when <path> is a directory (default stdout)")
	workers := flag.Int("workers", 4, "parallel files in directory mode")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: docextract [flags] <file|dir>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Logs go to stderr so stdout stays clean for the artifact.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	rf, err := render.ParseFormat(*format)
	if err != nil {
		logger.Error("invalid -format", "error", err)
		os.Exit(2)
	}
	stage, ok := constants.ParseStage(*source)
	if !ok {
		logger.Error("invalid -source", "value", *source)
		os.Exit(2)
	}

	var languages []string
	if *langs != "" {
		v := common.NewValidator()
		for _, l := range strings.Split(*langs, ",") {
			l = strings.TrimSpace(l)
			v.Field("lang", l, common.LanguageCode)
			languages = append(languages, l)
		}
		if err := common.ValidateAndReturnError(v); err != nil {
			logger.Error("invalid -lang", "error", err)
			os.Exit(2)
		}
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()
	proc, err := pipeline.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "code", common.CodeOf(err), "error", err)
		os.Exit(1)
	}

	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		os.Exit(runDir(ctx, proc, logger, path, *out, stage, rf, languages, *workers))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read input", "path", path, "error", err)
		os.Exit(1)
	}

	_, art, err := proc.Process(ctx, pipeline.Upload{
		Name:      filepath.Base(path),
		MediaType: constants.MediaTypeForExt(filepath.Ext(path)),
		Data:      data,
		Languages: languages,
	}, stage, rf)
	if err != nil {
		logger.Error("process", "path", path, "code", common.CodeOf(err), "error", err)
		os.Exit(1)
	}

	if *out == "" {
		if _, err := os.Stdout.Write(art.Data); err != nil {
			logger.Error("write stdout", "error", err)
			os.Exit(1)
		}
		return
	}
	if err := os.WriteFile(*out, art.Data, 0o644); err != nil {
		logger.Error("write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("wrote artifact", "path", *out, "media_type", art.MediaType, "bytes", len(art.Data))
}

// runDir processes a directory tree and prints one line per file. The exit
// code is 1 when any file failed.
func runDir(ctx context.Context, proc *pipeline.Processor, logger *slog.Logger, root, outDir string, stage constants.Stage, format constants.ReportFormat, langs []string, workers int) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r := batch.New(batch.Config{
		OutDir:     outDir,
		Stage:      stage,
		Format:     format,
		Languages:  langs,
		SkipHidden: true,
	}, proc, logger, batch.WithWorkers(workers))
	results, stats, err := r.Run(ctx, root)
	for _, res := range results {
		if res.Err != "" {
			fmt.Printf("FAIL %s: %s\n", res.Path, res.Err)
			continue
		}
		fmt.Printf("ok   %s -> %s\n", res.Path, res.Output)
	}
	fmt.Printf("scanned=%d matched=%d succeeded=%d failed=%d\n", stats.Scanned, stats.Matched, stats.Succeeded, stats.Failed)
	if err != nil {
		logger.Error("batch", "root", root, "error", err)
		return 1
	}
	if stats.Failed > 0 {
		return 1
	}
	return 0
}
