// Command storefront is a headless cart client for smoke-testing a running
// backend: it establishes a session, adds an item, prints the cart and
// optionally emits the payment-collector URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"goaltickets/internal/client/api"
	"goaltickets/internal/client/checkout"
	"goaltickets/internal/client/session"
	"goaltickets/internal/client/state"
	"goaltickets/internal/client/storage"
	clientsync "goaltickets/internal/client/sync"
	cartdom "goaltickets/internal/domain/cart"
)

func main() {
	var (
		backendURL   = flag.String("backend", "http://localhost:8080", "cart backend base URL")
		stateFile    = flag.String("state", defaultStatePath(), "client state file (session id, snapshots)")
		addTitle     = flag.String("add", "", "add an item with this title, then print the cart")
		addPrice     = flag.Float64("price", 0, "price for -add")
		addQty       = flag.Int("qty", 1, "quantity for -add")
		clear        = flag.Bool("clear", false, "clear the cart")
		collectorURL = flag.String("collector", "", "payment collector URL; when set, print the checkout URL instead of redirecting")
		returnURL    = flag.String("return", "http://localhost:8080/", "payment return URL")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := storage.NewLayered(storage.NewFileStore(*stateFile), storage.NewMemStore())
	sessions := session.NewProvider(store)
	cs := state.New(api.NewClient(*backendURL), sessions, nil)

	if err := cs.Init(ctx); err != nil {
		log.Fatalf("[storefront] init failed: %v", err)
	}

	sched := clientsync.NewScheduler(cs)
	sched.Start(ctx)
	defer sched.Stop()

	switch {
	case *clear:
		if err := cs.ClearCart(ctx); err != nil {
			log.Fatalf("[storefront] clear failed: %v", err)
		}
	case *addTitle != "":
		ok, err := cs.AddToCart(ctx, cartdom.Item{
			Title:    *addTitle,
			Price:    *addPrice,
			Quantity: *addQty,
		})
		if err != nil || !ok {
			log.Fatalf("[storefront] add failed: %v", err)
		}
	}

	printCart(cs)

	if *collectorURL != "" {
		h := checkout.New(checkout.Config{
			CollectorURL:   *collectorURL,
			ReturnURL:      *returnURL,
			Site:           "GoalTickets",
			CurrencySymbol: "$",
		}, store, checkout.NavigatorFunc(func(u string) error {
			fmt.Println("checkout:", u)
			return nil
		}))
		if _, _, err := h.Begin(cs.SessionID(), cs.Items(), cs.Total()); err != nil {
			log.Fatalf("[storefront] checkout failed: %v", err)
		}
	}
}

func printCart(cs *state.CartState) {
	fmt.Printf("session %s\n", cs.SessionID())
	for _, it := range cs.Items() {
		fmt.Printf("  %-24s %-20s x%d  $%.2f\n", it.ID, it.Title, it.Quantity, it.Price)
	}
	fmt.Printf("total $%.2f (%d items)\n", cs.Total(), cs.Count())
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".goaltickets.json"
	}
	return filepath.Join(dir, "goaltickets", "client.json")
}
