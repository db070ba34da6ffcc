package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MailMessage is the payload published for the mailer service.
type MailMessage struct {
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// AMQPNotifier publishes mail to a durable queue and waits for the broker's
// confirm, so a returned nil means the broker accepted the message.
type AMQPNotifier struct {
	conn  *amqp.Connection
	queue string

	mu sync.Mutex
	ch *amqp.Channel

	// publish sends msg and reports the broker's ack. Tests replace it.
	publish func(ctx context.Context, msg amqp.Publishing) (bool, error)
}

// DialAMQP connects, declares queue and puts the channel in confirm mode.
func DialAMQP(url, queue string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	n := &AMQPNotifier{conn: conn, queue: queue}
	n.publish = n.publishConfirmed
	if err := n.openChannel(); err != nil {
		conn.Close()
		return nil, err
	}
	return n, nil
}

func (n *AMQPNotifier) openChannel() error {
	ch, err := n.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("amqp declare %s: %w", n.queue, err)
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return fmt.Errorf("amqp confirm mode: %w", err)
	}
	n.ch = ch
	return nil
}

func (n *AMQPNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	now := time.Now().UTC()
	payload, err := json.Marshal(MailMessage{To: recipient, Subject: subject, Body: body, SentAt: now})
	if err != nil {
		return err
	}

	acked, err := n.publish(ctx, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         payload,
	})
	if err != nil {
		return err
	}
	if !acked {
		return errors.New("amqp: broker nacked message")
	}
	return nil
}

// publishConfirmed publishes on the confirm-mode channel, reopening it if the
// broker closed it, and waits for the confirm.
func (n *AMQPNotifier) publishConfirmed(ctx context.Context, msg amqp.Publishing) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch == nil || n.ch.IsClosed() {
		if err := n.openChannel(); err != nil {
			return false, err
		}
	}

	confirm, err := n.ch.PublishWithDeferredConfirmWithContext(ctx, "", n.queue, false, false, msg)
	if err != nil {
		return false, fmt.Errorf("amqp publish: %w", err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return false, fmt.Errorf("amqp confirm: %w", err)
	}
	return acked, nil
}

func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch != nil {
		_ = n.ch.Close()
	}
	return n.conn.Close()
}
