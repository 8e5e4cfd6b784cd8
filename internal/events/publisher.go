// Package events fans ledger changes out to the message broker and to admin
// browsers listening on the live websocket feed.
package events

import (
	"context"
	"errors"
)

const (
	KeyLedgerUpdated  = "booking.ledger_updated"
	KeyPaymentCreated = "payment.recorded"
	KeyPaymentDeleted = "payment.deleted"
)

// Publisher delivers a JSON-serialisable payload under a routing key.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Envelope is the message body sent on every transport.
type Envelope struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Data    any    `json:"data"`
}

func NewEnvelope(key string, payload any) Envelope {
	return Envelope{Event: key, Version: 1, Data: payload}
}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

// Multi publishes to every target and joins the errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, key string, payload any) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, key, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
