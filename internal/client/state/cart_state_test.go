package state

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaltickets/internal/adapters/in/http/handler"
	"goaltickets/internal/adapters/out/memory"
	usecase "goaltickets/internal/application/usecase"
	"goaltickets/internal/client/api"
	"goaltickets/internal/client/session"
	"goaltickets/internal/client/storage"
	cartdom "goaltickets/internal/domain/cart"
)

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

type recordingView struct {
	rendered   [][]cartdom.Item
	emptyCalls int
	counts     []int
	panelOpens int
}

func (v *recordingView) RenderItems(items []cartdom.Item, _ float64) {
	v.rendered = append(v.rendered, items)
}
func (v *recordingView) RenderEmpty()      { v.emptyCalls++ }
func (v *recordingView) UpdateCount(n int) { v.counts = append(v.counts, n) }
func (v *recordingView) OpenPanel()        { v.panelOpens++ }

func newFixture(t *testing.T) (*CartState, *recordingView) {
	t.Helper()

	repo := memory.NewCartRepositoryMem()
	uc := usecase.NewCartUsecaseWithClock(repo, cartdom.MergeByID, stubClock{t: time.Now()})

	mux := http.NewServeMux()
	mux.Handle("/api/cart/", handler.NewCartHandler(uc))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	view := &recordingView{}
	sessions := session.NewProvider(storage.NewMemStore())
	cs := New(api.NewClient(srv.URL), sessions, view)
	return cs, view
}

func TestInitRendersEmptyCart(t *testing.T) {
	cs, view := newFixture(t)

	require.NoError(t, cs.Init(context.Background()))

	assert.True(t, cs.Initialized())
	assert.Equal(t, 1, view.emptyCalls)
	assert.Equal(t, []int{0}, view.counts)
	assert.NotEmpty(t, cs.SessionID())
}

func TestInitIsReentrant(t *testing.T) {
	cs, view := newFixture(t)
	ctx := context.Background()

	require.NoError(t, cs.Init(ctx))
	require.NoError(t, cs.Init(ctx))

	// second Init re-fetched and re-rendered, nothing else
	assert.Equal(t, 2, view.emptyCalls)
}

func TestAddToCartMirrorsServerAndOpensPanel(t *testing.T) {
	cs, view := newFixture(t)
	ctx := context.Background()
	require.NoError(t, cs.Init(ctx))

	ok, err := cs.AddToCart(ctx, cartdom.Item{Title: "GA", Category: "Stand A", Price: 100, Quantity: 2})
	require.NoError(t, err)
	assert.True(t, ok)

	items := cs.Items()
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID) // generated when absent
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, view.panelOpens)
	assert.InDelta(t, 200.0, cs.Total(), 1e-9)
	assert.Equal(t, 2, cs.Count())
}

func TestQuantityControls(t *testing.T) {
	cs, _ := newFixture(t)
	ctx := context.Background()
	require.NoError(t, cs.Init(ctx))

	_, err := cs.AddToCart(ctx, cartdom.Item{ID: "item_1", Price: 10, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, cs.IncrementQuantity(ctx, "item_1"))
	assert.Equal(t, 2, cs.Items()[0].Quantity)

	require.NoError(t, cs.DecrementQuantity(ctx, "item_1"))
	assert.Equal(t, 1, cs.Items()[0].Quantity)

	// floor: decrement at 1 leaves the line alone
	require.NoError(t, cs.DecrementQuantity(ctx, "item_1"))
	require.Len(t, cs.Items(), 1)
	assert.Equal(t, 1, cs.Items()[0].Quantity)

	require.NoError(t, cs.UpdateQuantity(ctx, "item_1", 0))
	assert.Empty(t, cs.Items())
}

func TestRemoveAndClear(t *testing.T) {
	cs, view := newFixture(t)
	ctx := context.Background()
	require.NoError(t, cs.Init(ctx))

	_, err := cs.AddToCart(ctx, cartdom.Item{ID: "item_1", Price: 10, Quantity: 1})
	require.NoError(t, err)
	_, err = cs.AddToCart(ctx, cartdom.Item{ID: "item_2", Price: 20, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, cs.RemoveFromCart(ctx, "item_1"))
	require.Len(t, cs.Items(), 1)

	require.NoError(t, cs.ClearCart(ctx))
	assert.Empty(t, cs.Items())
	assert.Equal(t, 0, cs.Count())
	assert.GreaterOrEqual(t, view.emptyCalls, 1)
}

func TestRefreshFailureKeepsLocalMirror(t *testing.T) {
	repo := memory.NewCartRepositoryMem()
	uc := usecase.NewCartUsecaseWithClock(repo, cartdom.MergeByID, stubClock{t: time.Now()})
	mux := http.NewServeMux()
	mux.Handle("/api/cart/", handler.NewCartHandler(uc))
	srv := httptest.NewServer(mux)

	sessions := session.NewProvider(storage.NewMemStore())
	cs := New(api.NewClient(srv.URL), sessions, nil)
	ctx := context.Background()

	require.NoError(t, cs.Init(ctx))
	_, err := cs.AddToCart(ctx, cartdom.Item{ID: "item_1", Price: 10, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cs.Items(), 1)

	srv.Close()

	assert.Error(t, cs.Refresh(ctx))
	assert.Len(t, cs.Items(), 1)
}

type stubSnapshots struct {
	items   []cartdom.Item
	dropped bool
}

func (s *stubSnapshots) RestoreSnapshot() ([]cartdom.Item, error) {
	if s.dropped {
		return nil, nil
	}
	return s.items, nil
}
func (s *stubSnapshots) DropSnapshot() error {
	s.dropped = true
	return nil
}

func TestRefreshRestoresPrePaymentSnapshot(t *testing.T) {
	cs, _ := newFixture(t)
	ctx := context.Background()

	snap := &stubSnapshots{items: []cartdom.Item{
		{ID: "item_1", Title: "GA", Price: 100, Quantity: 2},
		{ID: "item_2", Title: "VIP", Price: 250, Quantity: 1},
	}}
	cs.SetSnapshotSource(snap)

	require.NoError(t, cs.Init(ctx))

	// the empty server cart was repopulated from the snapshot
	require.Len(t, cs.Items(), 2)
	assert.InDelta(t, 450.0, cs.Total(), 1e-9)
	assert.True(t, snap.dropped)

	// the restore went to the server, not just the mirror
	require.NoError(t, cs.Refresh(ctx))
	assert.Len(t, cs.Items(), 2)
}

func TestRefreshWithoutSnapshotStaysEmpty(t *testing.T) {
	cs, _ := newFixture(t)
	ctx := context.Background()

	cs.SetSnapshotSource(&stubSnapshots{})
	require.NoError(t, cs.Init(ctx))
	assert.Empty(t, cs.Items())
}

func TestAdoptSessionSwitchesCart(t *testing.T) {
	repo := memory.NewCartRepositoryMem()
	uc := usecase.NewCartUsecaseWithClock(repo, cartdom.MergeByID, stubClock{t: time.Now()})
	mux := http.NewServeMux()
	mux.Handle("/api/cart/", handler.NewCartHandler(uc))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	ctx := context.Background()

	// another browser's cart already exists server side
	_, err := client.AddItem(ctx, "session_77_other", cartdom.Item{ID: "item_x", Price: 5, Quantity: 3})
	require.NoError(t, err)

	cs := New(client, session.NewProvider(storage.NewMemStore()), nil)
	require.NoError(t, cs.Init(ctx))
	require.Empty(t, cs.Items())

	cs.AdoptSession("session_77_other")
	require.NoError(t, cs.Refresh(ctx))

	assert.Equal(t, "session_77_other", cs.SessionID())
	require.Len(t, cs.Items(), 1)
	assert.Equal(t, 3, cs.Items()[0].Quantity)
}
