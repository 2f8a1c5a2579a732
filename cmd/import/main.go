package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/allichat/server/internal/config"
	"github.com/allichat/server/internal/importer"
	"github.com/allichat/server/internal/store/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	path := flag.String("file", "", "path to the JSON snapshot to import")
	flag.Parse()
	if *path == "" {
		slog.Error("missing -file flag")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Load()
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	n, err := importer.New(postgres.NewDocumentStore(db)).Run(context.Background(), *path)
	if err != nil {
		slog.Error("import failed", "error", err, "written", n)
		os.Exit(1)
	}
	slog.Info("done", "written", n)
}
