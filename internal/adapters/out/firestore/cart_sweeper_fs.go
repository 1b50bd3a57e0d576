package firestore

import (
	"context"
	"errors"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// CartSweeperFS deletes cart docs whose expiresAt already passed.
//
// Firestore TTL does this natively when configured on "expiresAt"; the sweep
// exists for projects where the TTL policy is not set up, and as a manual
// knob (cmd/sweep).
type CartSweeperFS struct {
	Client *firestore.Client
}

func NewCartSweeperFS(client *firestore.Client) *CartSweeperFS {
	return &CartSweeperFS{Client: client}
}

// SweepExpired deletes expired cart docs and returns how many were removed.
// Individual doc failures are logged and skipped: a sweep is best-effort and
// re-runnable.
func (s *CartSweeperFS) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.Client == nil {
		return 0, errors.New("cart_sweeper_fs: firestore client is nil")
	}

	it := s.Client.Collection("carts").
		Where("expiresAt", "<", now).
		Documents(ctx)
	defer it.Stop()

	deleted := 0
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, err
		}

		if _, err := snap.Ref.Delete(ctx); err != nil {
			log.Printf("[cart_sweeper_fs] WARN: delete failed doc=%s err=%v", snap.Ref.ID, err)
			continue
		}
		deleted++
	}

	log.Printf("[cart_sweeper_fs] sweep done deleted=%d cutoff=%s", deleted, now.UTC().Format(time.RFC3339))
	return deleted, nil
}
