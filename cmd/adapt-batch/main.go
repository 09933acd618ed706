package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/internal/codec"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/llm/openai"
	repo "github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/server"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem    = flag.Bool("inmem", false, "use in-memory SQLite database")
		migrate  = flag.Bool("migrate", false, "create tables before running (postgres)")
		file     = flag.String("file", "", "material to adapt, pdf or docx (required)")
		profiles = flag.String("profiles", "", "YAML fixture with the class and its student profiles (required)")
		out      = flag.String("out", "", "directory for adapted copies (defaults to <file dir>/adapted)")
		report   = flag.String("report", "", "optional XLSX path for the adaptation history")
	)
	flag.Parse()

	if *file == "" || *profiles == "" {
		printError("Error: --file and --profiles are required\n")
		flag.Usage()
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*file), "adapted")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.InMemory = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	stores, err := repo.InitStores(ctx, cfg.Database, *migrate, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer stores.Close(logger)

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open object storage", "error", err)
		os.Exit(1)
	}

	stack := server.NewStack(server.Components{
		Stores:      stores,
		Store:       store,
		LLM:         openai.NewClient(openai.ConfigFromCommon(cfg.LLM), logger),
		Codec:       codec.New(logger),
		Concurrency: cfg.Batch.Concurrency,
		URLTTL:      cfg.Storage.SignedURLTTL,
		Logger:      logger,
	})
	defer stack.Queue.Shutdown(context.Background())

	fx, err := os.Open(*profiles)
	if err != nil {
		logger.Error("failed to open profiles fixture", "path", *profiles, "error", err)
		os.Exit(1)
	}
	class, plist, err := stack.Profiles.LoadProfilesYAML(ctx, fx)
	_ = fx.Close()
	if err != nil {
		logger.Error("failed to load profiles", "error", err)
		os.Exit(1)
	}
	logger.Info("using class", "id", class.ID, "name", class.Name, "profiles", len(plist))

	reg, err := stack.Ingest.RegisterPath(ctx, class.ID, *file)
	if err != nil {
		logger.Error("failed to register material", "file", *file, "error", err)
		os.Exit(1)
	}

	ids := make([]uuid.UUID, 0, len(plist))
	for _, p := range plist {
		ids = append(ids, p.ID)
	}
	res, err := stack.Processor.ProcessBatch(ctx, reg.MaterialID, ids)
	if err != nil {
		logger.Error("batch failed", "material_id", reg.MaterialID, "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", *out, "error", err)
		os.Exit(1)
	}
	written := 0
	for _, r := range res.Results {
		row, err := stores.Adapted.GetByID(ctx, r.AdaptedMaterialID)
		if err != nil {
			logger.Error("failed to load adapted material", "adapted_material_id", r.AdaptedMaterialID, "error", err)
			continue
		}
		data, err := store.Read(ctx, row.AdaptedFileKey)
		if err != nil {
			logger.Error("failed to read adapted copy", "key", row.AdaptedFileKey, "error", err)
			continue
		}
		dst := filepath.Join(*out, r.GeneratedFileName)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			logger.Error("failed to write adapted copy", "path", dst, "error", err)
			continue
		}
		written++
	}

	if *report != "" {
		xlsx, err := stack.Export.ExportHistoryXLSX(ctx, reg.MaterialID)
		if err != nil {
			logger.Error("failed to export history", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*report, xlsx, 0o644); err != nil {
			logger.Error("failed to write report", "path", *report, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete",
		"material_id", reg.MaterialID,
		"succeeded", res.SuccessCount,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"cancelled", res.Cancelled,
		"written", written,
	)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Profiles: %d\n", len(ids))
	fmt.Printf("- Adapted: %d (skipped %d, failed %d)\n", res.SuccessCount, res.Skipped, res.Failed)
	for _, o := range res.Profiles {
		if o.Reason != "" {
			fmt.Printf("  - %s %s: %s\n", o.ProfileID, o.Status, o.Reason)
		}
	}
	fmt.Printf("- Output: %s\n", *out)
	if *report != "" {
		fmt.Printf("- Report: %s\n", *report)
	}
}
