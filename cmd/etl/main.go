package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/infinit3labs/udacity-dend-proj1/internal/batch"
	"github.com/infinit3labs/udacity-dend-proj1/internal/metrics"
	"github.com/infinit3labs/udacity-dend-proj1/internal/metrics/datadog"
	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
	"github.com/infinit3labs/udacity-dend-proj1/internal/storage"

	// register all storage backends with the factory.
	_ "github.com/infinit3labs/udacity-dend-proj1/internal/storage/all"
)

// main opens one store connection, ensures the warehouse tables exist, runs
// the song-metadata batch and then the event-log batch. A failed file aborts
// the run; files committed before it stay durable.
func main() {
	var (
		songData       string
		logData        string
		storageKind    string
		dsn            string
		schemaPath     string
		metricsBackend string
	)

	flag.StringVar(&songData, "song-data", "data/song_data", "root directory of song-metadata JSON files")
	flag.StringVar(&logData, "log-data", "data/log_data", "root directory of event-log JSON files")
	flag.StringVar(&storageKind, "storage", "postgres", "storage backend kind (postgres, sqlite, mssql)")
	flag.StringVar(&dsn, "dsn", "", "store DSN (overrides env DATABASE_URL)")
	flag.StringVar(&schemaPath, "schema", "", "optional schema override JSON path")
	flag.StringVar(&metricsBackend, "metrics-backend", "none", "metrics backend to use (datadog, none)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		fatalf("no DSN: set -dsn or DATABASE_URL")
	}

	sch := schema.Default()
	if schemaPath != "" {
		s, err := schema.Load(schemaPath)
		if err != nil {
			fatalf("load schema: %v", err)
		}
		sch = s
	}

	switch metricsBackend {
	case "datadog":
		// The backend buffers locally and submits on a timer, then once more
		// from Close. Extra tags come from the environment.
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName:    "songplay_etl",
			Tags:       datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; metrics disabled", err)
		} else {
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics stay on the nop backend

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", metricsBackend)
	}

	ctx := context.Background()
	start := time.Now()

	repo, err := storage.New(ctx, storage.Config{Kind: storageKind, DSN: os.ExpandEnv(dsn)})
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureTables(ctx, sch.Tables()); err != nil {
		fatalf("ensure tables: %v", err)
	}

	driver := &batch.Driver{Repo: repo, Out: os.Stdout}
	if *verbose {
		driver.Logger = log.Default()
	}

	if err := driver.Run(ctx, "songs", songData, batch.SongPipeline(sch)); err != nil {
		log.Fatalf("%v", err)
	}
	if err := driver.Run(ctx, "logs", logData, batch.LogPipeline(sch)); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
