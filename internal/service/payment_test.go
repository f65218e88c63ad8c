package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eventlink/internal/core/clock"
	"eventlink/internal/domain"
)

func TestStubGateway_Authorize(t *testing.T) {
	t.Parallel()
	g := NewStubGateway([]string{"0000", " 0002 "}, clock.NewFixed(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	withCard := func(number, expiry string) domain.PaymentDetails {
		return domain.PaymentDetails{CardNumber: number, Expiry: expiry, CVV: "123", CardholderName: "X"}
	}

	assert.NoError(t, g.Authorize(ctx, withCard("4242424242424242", "06/26"), money("10")))
	assert.ErrorIs(t, g.Authorize(ctx, withCard("4242424242420000", "12/30"), money("10")), errCardDeclined)
	assert.ErrorIs(t, g.Authorize(ctx, withCard("4242424242420002", "12/30"), money("10")), errCardDeclined)
	assert.ErrorIs(t, g.Authorize(ctx, withCard("4242424242424242", "05/26"), money("10")), errCardExpired)
	assert.ErrorIs(t, g.Authorize(ctx, withCard("4242424242424242", "12/25"), money("10")), errCardExpired)
	assert.ErrorIs(t, g.Authorize(ctx, withCard("4242424242424242", "12/30"), money("-1")), domain.ErrInvalidAmount)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, g.Authorize(cancelled, withCard("4242424242424242", "12/30"), money("10")), context.Canceled)
}
