package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"mindful-chat/internal/config"
	"mindful-chat/internal/infra/db/sqlite"
	"mindful-chat/internal/infra/logging"
	"mindful-chat/internal/usecase"
)

// Seeds the default and personality prompt templates. Safe to re-run:
// existing templates are left untouched.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalf("sqlite: %v", err)
	}
	defer db.Close()

	promptUC := usecase.NewPromptUseCase(sqlite.NewPromptRepo(db, logger), logger)
	if err := promptUC.EnsureDefaults(ctx); err != nil {
		log.Fatalf("seed: %v", err)
	}

	prompts, err := promptUC.List(ctx)
	if err != nil {
		log.Fatalf("list prompts: %v", err)
	}
	for _, p := range prompts {
		marker := " "
		if p.IsDefault {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, p.Name)
	}
}
