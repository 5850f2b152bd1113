package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sol/internal/models"
)

type recorder struct {
	mu      sync.Mutex
	emails  []string
	events  []string
	audits  []string
	admins  []string
	block   bool
	failErr error
}

func (r *recorder) SendOrderConfirmation(ctx context.Context, order OrderSummary) error {
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, order.OrderNumber)
	return r.failErr
}

func (r *recorder) Publish(ctx context.Context, routingKey string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, routingKey)
	return nil
}

func (r *recorder) Record(ctx context.Context, event AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, event.Action)
	return nil
}

func (r *recorder) NotifyNewOrder(ctx context.Context, order OrderSummary) error {
	panic("telegram down")
}

func TestNotifierOrderCreated(t *testing.T) {
	rec := &recorder{failErr: errors.New("smtp down")}
	n := NewNotifier(rec, rec, rec, rec, time.Second)

	n.OrderCreated(OrderSummary{ID: uuid.New(), OrderNumber: "SOL-20250101-00001"})
	n.Wait()

	assert.Equal(t, []string{"SOL-20250101-00001"}, rec.emails)
	assert.Equal(t, []string{"order.created"}, rec.events)
	assert.Equal(t, []string{"order.created"}, rec.audits)
}

func TestNotifierTimeoutDoesNotBlock(t *testing.T) {
	rec := &recorder{block: true}
	n := NewNotifier(rec, nil, nil, nil, 20*time.Millisecond)

	start := time.Now()
	n.OrderCreated(OrderSummary{ID: uuid.New()})
	assert.Less(t, time.Since(start), 20*time.Millisecond)

	n.Wait()
	assert.Less(t, time.Since(start), time.Second)
}

func TestNotifierNilCollaborators(t *testing.T) {
	n := NewNotifier(nil, nil, nil, nil, 0)
	n.OrderCreated(OrderSummary{})
	n.OrderCancelled(OrderSummary{}, uuid.New(), "changed mind")
	n.OrderUpdated(OrderSummary{}, uuid.New(), nil)
	n.Wait()

	var nilNotifier *Notifier
	nilNotifier.OrderCreated(OrderSummary{})
	nilNotifier.Wait()
}

func TestSummarize(t *testing.T) {
	order := &models.Order{
		OrderNumber: "SOL-20250101-00002",
		Subtotal:    dec("370"),
		TotalAmount: dec("420"),
		Currency:    "EGP",
		Items: []models.OrderItem{{
			Quantity:   1,
			UnitPrice:  dec("370"),
			TotalPrice: dec("370"),
			ProductSnapshot: models.ProductSnapshot{
				Name:    "Oud Musk",
				Variant: &models.VariantSnapshot{Name: "100ml"},
			},
		}},
	}
	summary := Summarize(order, LangEnglish)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "Oud Musk - 100ml", summary.Items[0].Name)
	assert.Equal(t, LangEnglish, summary.Lang)
	assert.True(t, dec("420").Equal(summary.Total))
}
