package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Domenick1991/parkinglot/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Sender writes operator notices for parking events. Delivery channels other
// than the configured writer are out of scope.
type Sender struct {
	out io.Writer
}

func NewSender() *Sender {
	return &Sender{out: os.Stdout}
}

func NewSenderTo(out io.Writer) *Sender {
	return &Sender{out: out}
}

func (s *Sender) Send(ctx context.Context, event kafka.ParkingEvent) error {
	msg, ok := Message(event)
	if !ok {
		return nil
	}
	_, err := fmt.Fprintln(s.out, msg)
	return err
}

// Message renders the notice text for an event; ok is false for events that
// carry no notice.
func Message(event kafka.ParkingEvent) (string, bool) {
	switch event.Type {
	case kafka.EventSessionExited:
		return fmt.Sprintf("vehicle %s left space %s after %s, charged %s", event.Plate, event.SpaceNumber, event.ElapsedText, event.Amount), true
	case kafka.EventLongStayAlert:
		return fmt.Sprintf("long stay: vehicle %s on space %s for %s", event.Plate, event.SpaceNumber, event.ElapsedText), true
	}
	return "", false
}

// Handler adapts a Sender to the consumer loop. Decode and delivery failures
// are logged and the message is committed, so one bad notice never stops
// consumption.
func Handler(sender *Sender) func(context.Context, kafkaGo.Message) error {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		event, err := kafka.DecodeEvent(msg)
		if err != nil {
			log.Printf("decode event error: %v", err)
			return nil
		}
		if err := sender.Send(ctx, event); err != nil {
			log.Printf("notify %s for session %d: %v", event.Type, event.SessionID, err)
		}
		return nil
	}
}
