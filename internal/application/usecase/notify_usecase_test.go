package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}

func TestNotifyFanIDFansOut(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	uc := NewNotifyUsecase(a, b, nil)

	err := uc.NotifyFanID(context.Background(), FanIDInput{
		SessionID: "session_1_a",
		FanID:     "FAN-42",
		CartTotal: 150,
	})
	require.NoError(t, err)

	require.Len(t, a.messages, 1)
	require.Len(t, b.messages, 1)
	assert.Equal(t, a.messages[0], b.messages[0])
	assert.Contains(t, a.messages[0], "<b>Fan ID applied</b>")
	assert.Contains(t, a.messages[0], "FAN-42")
	assert.Contains(t, a.messages[0], "$150.00 USD")
	assert.Contains(t, a.messages[0], "session_1_a")
}

func TestNotifyFanIDValidation(t *testing.T) {
	uc := NewNotifyUsecase(&recordingNotifier{})

	err := uc.NotifyFanID(context.Background(), FanIDInput{SessionID: "", FanID: "x"})
	assert.ErrorIs(t, err, ErrNotifyInvalidArgument)

	err = uc.NotifyFanID(context.Background(), FanIDInput{SessionID: "s", FanID: "   "})
	assert.ErrorIs(t, err, ErrNotifyInvalidArgument)
}

func TestNotifyFanIDSwallowsDeliveryFailures(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("telegram down")}
	ok := &recordingNotifier{}
	uc := NewNotifyUsecase(failing, ok)

	err := uc.NotifyFanID(context.Background(), FanIDInput{SessionID: "s", FanID: "f"})
	require.NoError(t, err)
	assert.Len(t, ok.messages, 1)
}

func TestNotifyFanIDNoNotifiersConfigured(t *testing.T) {
	uc := NewNotifyUsecase()

	err := uc.NotifyFanID(context.Background(), FanIDInput{SessionID: "s", FanID: "f"})
	assert.NoError(t, err)
}
