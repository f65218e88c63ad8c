package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlink/internal/domain"
)

func TestSettlement_EventRevenue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	org := organizer("org-1")
	e := f.createEvent(t, org, eventInput("Gala", "25.00", intPtr(100)))
	f.buy(t, attendee("u-1"), e.ID, 1)
	f.buy(t, attendee("u-2"), e.ID, 2)

	r, err := f.settlement.OwnedEventRevenue(ctx, org, e.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, r.TicketCount)
	assert.EqualValues(t, 3, r.TotalQuantity)
	assert.Equal(t, "75.00", r.Gross.StringFixed(2))
	assert.Equal(t, "67.50", r.Net.StringFixed(2))
	assert.Equal(t, "7.50", r.Fees.StringFixed(2))

	_, err = f.settlement.OwnedEventRevenue(ctx, organizer("org-2"), e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFoundOrUnauthorized)

	plain, err := f.settlement.EventRevenue(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, plain.Gross.Equal(r.Gross))

	t.Run("no sales", func(t *testing.T) {
		empty := f.createEvent(t, org, eventInput("Empty", "99", nil))
		r, err := f.settlement.EventRevenue(ctx, empty.ID)
		require.NoError(t, err)
		assert.True(t, r.Gross.IsZero())
		assert.True(t, r.Net.IsZero())
	})
}

func TestSettlement_OrganizerSummaryReconciles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	org := organizer("org-1")
	a := f.createEvent(t, org, eventInput("A", "25.00", nil))
	b := f.createEvent(t, org, eventInput("B", "19.99", nil))
	f.createEvent(t, org, eventInput("C", "5", nil))
	foreign := f.createEvent(t, organizer("org-2"), eventInput("Not mine", "100", nil))

	f.buy(t, attendee("u-1"), a.ID, 3)
	f.buy(t, attendee("u-1"), b.ID, 1)
	f.buy(t, attendee("u-2"), b.ID, 2)
	f.buy(t, attendee("u-2"), foreign.ID, 5)

	sum, err := f.settlement.OrganizerSummary(ctx, org)
	require.NoError(t, err)
	require.Len(t, sum.PerEvent, 3)

	gross, net := money("0"), money("0")
	for _, r := range sum.PerEvent {
		gross = gross.Add(r.Gross)
		net = net.Add(r.Net)
	}
	assert.True(t, sum.TotalGross.Equal(gross))
	assert.True(t, sum.TotalNet.Equal(net))
	assert.True(t, sum.TotalFees.Equal(gross.Sub(net)))
	assert.Equal(t, "134.97", sum.TotalGross.StringFixed(2))

	_, err = f.settlement.OrganizerSummary(ctx, attendee("u-1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSettlement_RequestPayout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	org := organizer("org-1")

	cases := []struct {
		name    string
		amount  string
		dest    string
		wantErr error
	}{
		{"below minimum", "5.00", "acct-123", domain.ErrBelowMinimum},
		{"zero", "0", "acct-123", domain.ErrInvalidAmount},
		{"negative", "-10", "acct-123", domain.ErrInvalidAmount},
		{"missing destination", "50", "  ", domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.settlement.RequestPayout(ctx, org, money(tc.amount), tc.dest)
			assert.ErrorIs(t, err, tc.wantErr)
			list, err := f.settlement.Payouts(ctx, org)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}

	t.Run("accepted request echoes amount and destination", func(t *testing.T) {
		f := newFixture(t)
		rcpt, err := f.settlement.RequestPayout(ctx, org, money("50.00"), "acct-123")
		require.NoError(t, err)
		assert.True(t, rcpt.Amount.Equal(money("50")))
		assert.Equal(t, "acct-123", rcpt.Destination)
		assert.Equal(t, domain.PayoutStatusRequested, rcpt.Status)
		assert.Equal(t, testNow, rcpt.RequestedAt)
		assert.Equal(t, "Payout request for $50.00 to acct-123 submitted. Funds will be transferred within 3-5 business days.", rcpt.Message)

		list, err := f.settlement.Payouts(ctx, org)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, rcpt.ID, list[0].ID)
	})

	t.Run("exactly the minimum", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.settlement.RequestPayout(ctx, org, domain.MinimumPayout, "acct-1")
		assert.NoError(t, err)
	})

	t.Run("attendees cannot request payouts", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.settlement.RequestPayout(ctx, attendee("u-1"), money("50"), "acct-1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
