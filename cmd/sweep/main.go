package main

import (
	"context"
	"flag"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	fsadapter "goaltickets/internal/adapters/out/firestore"
	"goaltickets/internal/infra/config"
)

// sweep deletes expired cart documents. Meant for projects where Firestore
// TTL is not configured on expiresAt, or as a manual cleanup knob.
func main() {
	var dryCutoff time.Duration
	flag.DurationVar(&dryCutoff, "grace", 0, "extra grace period added on top of each cart's expiresAt")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()

	if cfg.FirestoreProjectID == "" {
		log.Fatalf("[sweep] FIRESTORE_PROJECT_ID is required")
	}

	var opts []option.ClientOption
	if cfg.FirestoreCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID, opts...)
	if err != nil {
		log.Fatalf("[sweep] firestore.NewClient: %v", err)
	}
	defer client.Close()

	cutoff := time.Now().Add(-dryCutoff)
	deleted, err := fsadapter.NewCartSweeperFS(client).SweepExpired(ctx, cutoff)
	if err != nil {
		log.Fatalf("[sweep] sweep failed after %d deletions: %v", deleted, err)
	}
	log.Printf("[sweep] done deleted=%d", deleted)
}
