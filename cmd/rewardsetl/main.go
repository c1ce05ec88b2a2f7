package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"rewardsetl/internal/config"

	// register all backends with the storage factory.
	// DB_KIND picks one at runtime, so every driver is built in.
	_ "rewardsetl/internal/storage/all"
)

// main is the entry point for the rewards ETL binary. It loads configuration
// from the environment, installs the metrics backend, and replaces the four
// analytic tables from the NDJSON datasets.
func main() {
	var validate bool
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}

	warnings, err := config.Check(*cfg)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", w.Severity, w.Path, w.Message)
	}
	if err != nil {
		fatalf("%v", err)
	}

	if validate {
		log.Printf("Configuration is valid: db.kind=%s base_dir=%s", cfg.DB.Kind, cfg.BaseDir)
		os.Exit(0)
	}

	ctx := context.Background()
	start := time.Now()
	if *verbose {
		log.Printf("rewardsetl: job=%s db.kind=%s base_dir=%s metrics=%s",
			cfg.Job, cfg.DB.Kind, cfg.BaseDir, cfg.Metrics.Backend)
	}

	if err := run(ctx, *cfg); err != nil {
		fatalf("rewardsetl: %v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
