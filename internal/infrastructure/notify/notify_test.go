package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_WritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))

	require.NoError(t, n.Send(context.Background(), "a@x.com", "Your code", "code: 123"))
	assert.Contains(t, buf.String(), `"to":"a@x.com"`)
	assert.Contains(t, buf.String(), "code: 123")
}

func TestSMTPNotifier_BuildsMessage(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "mail.local", Port: 2525, From: "noreply@reviewhub.dev"})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	n.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	require.NoError(t, n.Send(context.Background(), "a@x.com", "Your code", "123"))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	assert.True(t, strings.HasPrefix(string(gotMsg), "From: noreply@reviewhub.dev\r\n"))
	assert.Contains(t, string(gotMsg), "Subject: Your code\r\n")
}

func TestSMTPNotifier_PropagatesFailure(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "mail.local", Port: 25})
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }

	err := n.Send(context.Background(), "a@x.com", "s", "b")
	assert.ErrorContains(t, err, "relay down")
}

type failingNotifier struct{}

func (failingNotifier) Send(context.Context, string, string, string) error {
	return errors.New("nope")
}

func TestInstrumented_PassesThrough(t *testing.T) {
	ok := NewInstrumented(NewLogNotifier(zerolog.Nop()), "log")
	assert.NoError(t, ok.Send(context.Background(), "a@x.com", "s", "b"))

	bad := NewInstrumented(failingNotifier{}, "smtp")
	assert.Error(t, bad.Send(context.Background(), "a@x.com", "s", "b"))
}

func TestAMQPNotifier_PublishesPersistentJSON(t *testing.T) {
	var got amqp.Publishing
	n := &AMQPNotifier{queue: "mail", publish: func(_ context.Context, msg amqp.Publishing) (bool, error) {
		got = msg
		return true, nil
	}}

	require.NoError(t, n.Send(context.Background(), "a@x.com", "Your code", "code: 123"))
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, amqp.Persistent, got.DeliveryMode)

	var msg MailMessage
	require.NoError(t, json.Unmarshal(got.Body, &msg))
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Your code", msg.Subject)
	assert.Equal(t, "code: 123", msg.Body)
	assert.False(t, msg.SentAt.IsZero())
}

func TestAMQPNotifier_Nack(t *testing.T) {
	n := &AMQPNotifier{publish: func(context.Context, amqp.Publishing) (bool, error) { return false, nil }}
	assert.ErrorContains(t, n.Send(context.Background(), "a@x.com", "s", "b"), "nacked")
}

func TestAMQPNotifier_PublishFailure(t *testing.T) {
	n := &AMQPNotifier{publish: func(context.Context, amqp.Publishing) (bool, error) {
		return false, errors.New("amqp publish: channel closed")
	}}
	err := NewInstrumented(n, "amqp").Send(context.Background(), "a@x.com", "s", "b")
	assert.ErrorContains(t, err, "channel closed")
}
