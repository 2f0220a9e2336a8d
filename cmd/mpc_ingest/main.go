// Package main provides the mpc_ingest daemon: a NATS subscriber that
// parses astrometric observation lines off a subject and lands them in
// the configured stores.
//
// Each NATS message carries one or more MPC formatted lines (comment
// lines included). Parsed records always go to the local SQLite review
// store; when PostgreSQL or ClickHouse are configured they also feed
// the survey state and the analytics table.
//
// Usage:
//
//	mpc_ingest [options]
//
// Options:
//
//	-nats-url URL    NATS server (default: nats://localhost:4222, env: NATS_URL)
//	-subject SUBJ    Subject to subscribe to (default: mpc.observations, env: NATS_SUBJECT)
//	-sqlite PATH     SQLite path (default: observations.db, env: MPC_SQLITE_PATH)
//	-batch N         ClickHouse batch size (default: 64)
//	-aliases PATH    Alias table; canonicalises names and syncs groups to
//	                 PostgreSQL (env: MPC_ALIAS_TABLE)
//
// Store connections come from POSTGRES_* and CLICKHOUSE_* variables; a
// .env file in the working directory is loaded first. An empty host
// disables that store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/ijiraq/MainBeltComets/internal/index"
	"github.com/ijiraq/MainBeltComets/internal/mpc"
	"github.com/ijiraq/MainBeltComets/internal/storage"
)

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type ingester struct {
	stores *storage.Stores
	names  *index.Index
	held   *mpc.Comment
	batch  []storage.InsertParams
	limit  int

	received int
	records  int
	skipped  int
	stored   int
}

func (in *ingester) handleLine(ctx context.Context, line string) {
	obs, comment, err := mpc.ParseObservation(line)
	if err != nil {
		in.skipped++
		log.Printf("skip malformed line: %v", err)
		return
	}
	if comment != nil {
		in.held = comment
		return
	}
	if obs == nil {
		return
	}
	in.records++
	if in.held != nil {
		if obs.Comment == nil {
			obs.Comment = in.held
		}
		in.held = nil
	}

	// Records arriving under an alternate designation are filed under
	// the master name so per-object queries see one object.
	if in.names != nil {
		obs.ProvisionalName = in.names.Canonical(obs.ProvisionalName)
	}

	p := storage.ParamsFromObservation(obs, line)
	if _, err := in.stores.Local.Insert(p); err != nil {
		log.Printf("sqlite insert: %v", err)
		return
	}
	in.stored++

	if in.stores.PG != nil {
		if err := in.stores.PG.UpsertObservation(ctx, obs.Date().SortKey(), p); err != nil {
			log.Printf("postgres upsert: %v", err)
		}
	}
	if in.stores.CH != nil {
		in.batch = append(in.batch, p)
		if len(in.batch) >= in.limit {
			in.flush(ctx)
		}
	}
}

func (in *ingester) flush(ctx context.Context) {
	if in.stores.CH == nil || len(in.batch) == 0 {
		return
	}
	if err := in.stores.CH.InsertObservations(ctx, in.batch); err != nil {
		log.Printf("clickhouse batch: %v", err)
	}
	in.batch = in.batch[:0]
}

func main() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	natsURL := flag.String("nats-url", envOrDefault("NATS_URL", nats.DefaultURL), "NATS server URL")
	subject := flag.String("subject", envOrDefault("NATS_SUBJECT", "mpc.observations"), "NATS subject")
	sqlitePath := flag.String("sqlite", "", "SQLite path (overrides MPC_SQLITE_PATH)")
	batchSize := flag.Int("batch", 64, "ClickHouse insert batch size")
	aliasPath := flag.String("aliases", envOrDefault("MPC_ALIAS_TABLE", ""), "alias table path")
	flag.Parse()

	cfg := storage.ConfigFromEnv()
	if *sqlitePath != "" {
		cfg.SQLitePath = *sqlitePath
	}

	ctx := context.Background()
	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stores: %v\n", err)
		os.Exit(1)
	}
	defer stores.Close()

	if err := stores.CreateSchemas(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating schemas: %v\n", err)
		os.Exit(1)
	}

	closed := make(chan struct{})
	nc, err := nats.Connect(*natsURL,
		nats.Name("mpc_ingest"),
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to NATS: %v\n", err)
		os.Exit(1)
	}

	in := &ingester{stores: stores, limit: *batchSize}
	if *aliasPath != "" {
		ix, err := index.Load(*aliasPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading alias table: %v\n", err)
			os.Exit(1)
		}
		in.names = ix
		if stores.PG != nil {
			if err := stores.PG.ReplaceAliases(ctx, ix.Groups()); err != nil {
				fmt.Fprintf(os.Stderr, "Error syncing aliases: %v\n", err)
				os.Exit(1)
			}
		}
	}
	lines := make(chan string, 256)

	_, err = nc.Subscribe(*subject, func(msg *nats.Msg) {
		in.received++
		for _, line := range strings.Split(string(msg.Data), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			lines <- line
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error subscribing to %s: %v\n", *subject, err)
		os.Exit(1)
	}
	log.Printf("subscribed to %s on %s", *subject, *natsURL)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for line := range lines {
			in.handleLine(ctx, line)
		}
		close(done)
	}()

	<-sig
	log.Printf("draining")
	// Drain delivers every queued message through the callback before
	// closing the connection; only then is the line channel closed.
	if err := nc.Drain(); err != nil {
		log.Printf("drain: %v", err)
		nc.Close()
	}
	<-closed
	close(lines)
	<-done
	in.flush(ctx)

	log.Printf("stats: messages=%d records=%d stored=%d skipped=%d",
		in.received, in.records, in.stored, in.skipped)
}
