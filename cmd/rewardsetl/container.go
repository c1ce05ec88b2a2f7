package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"rewardsetl/internal/config"
	"rewardsetl/internal/datasource/file"
	"rewardsetl/internal/datasource/httpds"
	"rewardsetl/internal/metrics"
	"rewardsetl/internal/metrics/datadog"
	"rewardsetl/internal/metrics/prompush"
	"rewardsetl/internal/pipeline"
	"rewardsetl/internal/storage"
)

// run wires the configured source, sink, and metrics together and executes
// one full pipeline run. The repository and metrics are released on every
// exit path.
func run(ctx context.Context, cfg config.Config) error {
	flush := initMetrics(cfg)
	defer flush()

	repo, err := initRepository(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer repo.Close()

	r := &pipeline.Runner{
		Source: newSource(cfg),
		Sink:   storage.NewSink(repo),
		Job:    cfg.Job,
	}
	results, err := r.Run(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		log.Printf("summary: table=%s rows=%d inserted=%d nulled=%d fingerprint=%016x",
			res.Entity.Table, res.Table.Len(), res.Inserted, res.Nulled, res.Table.Fingerprint())
	}
	return nil
}

// newSource reads from the configured URL when set, else from BaseDir/data.
func newSource(cfg config.Config) pipeline.RecordSource {
	if cfg.Source.URL == "" {
		return file.NDJSON{BaseDir: cfg.BaseDir}
	}
	hc := httpds.Config{MaxRetries: cfg.Source.Retries}
	if cfg.Source.Token != "" {
		hc.Headers = http.Header{"Authorization": []string{"Bearer " + cfg.Source.Token}}
	}
	log.Printf("source: url=%s retries=%d", cfg.Source.URL, cfg.Source.Retries)
	return httpds.NDJSON{Client: httpds.NewClient(hc), BaseURL: cfg.Source.URL}
}

// initRepository opens the configured backend.
func initRepository(ctx context.Context, db config.DB) (storage.Repository, error) {
	dsn, err := db.DSN()
	if err != nil {
		return nil, err
	}
	return storage.New(ctx, storage.Config{Kind: db.Kind, DSN: dsn, BatchSize: db.BatchSize})
}

// initMetrics installs the configured metrics backend and returns the
// function that flushes it. A backend that fails to start leaves the nop
// backend in place; metrics never fail a run.
func initMetrics(cfg config.Config) (flush func()) {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err == nil {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", cfg.Metrics.PushgatewayURL, cfg.Metrics.Backend, cfg.Job)
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DogStatsDAddr,
			Namespace:  "rewards.",
			GlobalTags: []string{"service:rewardsetl", "job:" + cfg.Job},
		})
		if err == nil {
			log.Printf("metrics: addr=%v, backend=%v", cfg.Metrics.DogStatsDAddr, cfg.Metrics.Backend)
		}
	case "", "none":
		return func() {}
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Metrics.Backend)
	}
	if err != nil {
		log.Printf("metrics: %v; metrics disabled", err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}
