package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "goaltickets/internal/application/usecase"
)

type captureNotifier struct{ messages []string }

func (n *captureNotifier) Notify(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return nil
}

func doNotify(t *testing.T, h http.Handler, method, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/notify/fanid", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestNotifyFanID(t *testing.T) {
	n := &captureNotifier{}
	h := NewNotifyHandler(usecase.NewNotifyUsecase(n))

	code, out := doNotify(t, h, http.MethodPost,
		`{"sessionId":"session_1_a","fanId":"FAN-42","cartTotal":150}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "FAN-42")
	assert.Contains(t, n.messages[0], "$150.00 USD")
}

func TestNotifyFanIDCoercesStringTotal(t *testing.T) {
	n := &captureNotifier{}
	h := NewNotifyHandler(usecase.NewNotifyUsecase(n))

	code, _ := doNotify(t, h, http.MethodPost,
		`{"sessionId":"s","fanId":"f","cartTotal":"$99.50"}`)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "$99.50 USD")
}

func TestNotifyFanIDMissingFields(t *testing.T) {
	h := NewNotifyHandler(usecase.NewNotifyUsecase(&captureNotifier{}))

	code, out := doNotify(t, h, http.MethodPost, `{"sessionId":"s"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])
}

func TestNotifyFanIDMethodNotAllowed(t *testing.T) {
	h := NewNotifyHandler(usecase.NewNotifyUsecase(&captureNotifier{}))

	code, _ := doNotify(t, h, http.MethodGet, "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
