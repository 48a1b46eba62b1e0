package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Domenick1991/parkinglot/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Send(t *testing.T) {
	var buf bytes.Buffer
	sender := NewSenderTo(&buf)

	err := sender.Send(context.Background(), kafka.ParkingEvent{
		Type:        kafka.EventLongStayAlert,
		Plate:       "ABC123",
		SpaceNumber: "A-01",
		ElapsedText: "3h 5m",
	})

	require.NoError(t, err)
	assert.Equal(t, "long stay: vehicle ABC123 on space A-01 for 3h 5m\n", buf.String())
}

func TestSender_IgnoresOtherEvents(t *testing.T) {
	var buf bytes.Buffer
	sender := NewSenderTo(&buf)

	require.NoError(t, sender.Send(context.Background(), kafka.ParkingEvent{Type: kafka.EventSpaceCreated}))
	assert.Empty(t, buf.String())
}

func TestMessage_Exit(t *testing.T) {
	msg, ok := Message(kafka.ParkingEvent{
		Type:        kafka.EventSessionExited,
		Plate:       "ABC123",
		SpaceNumber: "A-01",
		ElapsedText: "3h 30m",
		Amount:      "RD$175.00",
	})

	assert.True(t, ok)
	assert.Equal(t, "vehicle ABC123 left space A-01 after 3h 30m, charged RD$175.00", msg)
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func exitMessage(t *testing.T, sessionID int64) kafkaGo.Message {
	t.Helper()
	value, err := json.Marshal(kafka.ParkingEvent{Type: kafka.EventSessionExited, SessionID: sessionID, Plate: "ABC123"})
	require.NoError(t, err)
	return kafkaGo.Message{Value: value}
}

func TestHandler_KeepsConsumingAfterSendFailure(t *testing.T) {
	out := &failingWriter{}
	handle := Handler(NewSenderTo(out))
	ctx := context.Background()

	assert.NoError(t, handle(ctx, exitMessage(t, 1)))
	assert.NoError(t, handle(ctx, exitMessage(t, 2)))
	assert.Equal(t, 2, out.calls)
}

func TestHandler_SkipsUndecodableMessage(t *testing.T) {
	var buf bytes.Buffer
	handle := Handler(NewSenderTo(&buf))

	assert.NoError(t, handle(context.Background(), kafkaGo.Message{Value: []byte("{not json")}))
	assert.Empty(t, buf.String())

	require.NoError(t, handle(context.Background(), exitMessage(t, 3)))
	assert.Contains(t, buf.String(), "vehicle ABC123 left space")
}
