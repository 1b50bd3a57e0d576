package handler

import (
	"errors"
	"log"
	"net/http"

	usecase "goaltickets/internal/application/usecase"
)

// NotifyHandler serves POST /api/notify/fanid.
//
// The response is {"success": true} whenever the input parses; downstream
// delivery failures are logged only (fire-and-forget by contract).
type NotifyHandler struct {
	uc *usecase.NotifyUsecase
}

func NewNotifyHandler(uc *usecase.NotifyUsecase) http.Handler {
	return &NotifyHandler{uc: uc}
}

type fanIDReq struct {
	SessionID string `json:"sessionId"`
	FanID     string `json:"fanId"`
	CartTotal any    `json:"cartTotal"`
}

func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "notify handler is not configured")
		return
	}

	var req fanIDReq
	if err := readJSON(r, &req); err != nil {
		log.Printf("[notify_handler] exit status=400 reason=invalid json err=%v", err)
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	err := h.uc.NotifyFanID(r.Context(), usecase.FanIDInput{
		SessionID: req.SessionID,
		FanID:     req.FanID,
		CartTotal: coercePrice(req.CartTotal),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrNotifyInvalidArgument) {
			writeErr(w, http.StatusBadRequest, "sessionId and fanId are required")
			return
		}
		// Unexpected only; notifier failures never bubble up this far.
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
