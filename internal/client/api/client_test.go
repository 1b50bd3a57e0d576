package api

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
	cartdom "goaltickets/internal/domain/cart"
)

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

// newBackend spins up the real handler stack, so the client is exercised
// against the same contract the storefront sees.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	repo := memory.NewCartRepositoryMem()
	cartUC := usecase.NewCartUsecaseWithClock(repo, cartdom.MergeByID, stubClock{t: time.Now()})
	notifyUC := usecase.NewNotifyUsecase()

	mux := http.NewServeMux()
	mux.Handle("/api/cart/", handler.NewCartHandler(cartUC))
	mux.Handle("/api/notify/fanid", handler.NewNotifyHandler(notifyUC))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL)
	ctx := context.Background()

	items, err := c.GetCart(ctx, "session_1_a")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = c.AddItem(ctx, "session_1_a", cartdom.Item{ID: "item_1", Title: "GA", Price: 100, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	items, err = c.UpdateQuantity(ctx, "session_1_a", "item_1", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	items, err = c.RemoveItem(ctx, "session_1_a", "item_1")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = c.AddItem(ctx, "session_1_a", cartdom.Item{ID: "item_2", Price: 10, Quantity: 1})
	require.NoError(t, err)
	items, err = c.ClearCart(ctx, "session_1_a")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServerErrorSurfacesAsRequestFailed(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL)

	// missing item id is rejected by the backend
	_, err := c.AddItem(context.Background(), "session_1_a", cartdom.Item{Title: "GA"})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestUnreachableBackend(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")

	_, err := c.GetCart(context.Background(), "session_1_a")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRequestFailed)
}

func TestNotifyFanID(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL)

	err := c.NotifyFanID(context.Background(), "session_1_a", "FAN-42", 150)
	assert.NoError(t, err)

	err = c.NotifyFanID(context.Background(), "", "", 0)
	assert.ErrorIs(t, err, ErrRequestFailed)
}
