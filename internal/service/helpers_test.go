package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventlink/internal/core/clock"
	"eventlink/internal/domain"
	"eventlink/internal/repo/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store      *memory.Store
	clock      clock.Clock
	catalog    *Catalog
	ledger     *Ledger
	settlement *Settlement
	accounts   *Accounts
}

func newFixture(t *testing.T, ledgerOpts ...LedgerOption) *fixture {
	t.Helper()
	st := memory.New()
	c := clock.NewFixed(testNow)
	l := zap.NewNop()
	opts := append([]LedgerOption{WithLedgerClock(c)}, ledgerOpts...)
	return &fixture{
		store:      st,
		clock:      c,
		catalog:    NewCatalog(st, st.Events(), st.Tickets(), st.Categories(), l, WithCatalogClock(c)),
		ledger:     NewLedger(st, st.Events(), st.Tickets(), NewStubGateway([]string{"0000"}, c), l, opts...),
		settlement: NewSettlement(st.Events(), st.Tickets(), st.Payouts(), l, WithSettlementClock(c)),
		accounts:   NewAccounts(st.Users(), st.Tickets(), c, l),
	}
}

func organizer(id string) domain.Principal {
	return domain.Principal{UserID: id, Role: domain.RoleOrganizer}
}

func attendee(id string) domain.Principal {
	return domain.Principal{UserID: id, Role: domain.RoleUser}
}

func intPtr(n int) *int { return &n }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func card() domain.PaymentDetails {
	return domain.PaymentDetails{
		CardNumber:     "4242 4242 4242 4242",
		Expiry:         "12/30",
		CVV:            "123",
		CardholderName: "Test Buyer",
	}
}

func eventInput(title string, price string, capacity *int) EventInput {
	return EventInput{
		Title:    title,
		Location: "Main Hall",
		DateTime: testNow.Add(30 * 24 * time.Hour),
		Price:    moneyPtr(price),
		Capacity: capacity,
		Category: "Concert",
	}
}

// signupOrganizer 在存储里建一个真实的主办方用户，活动视图才能带出主办方名称
func (f *fixture) signupOrganizer(t *testing.T, email, name string) domain.Principal {
	t.Helper()
	u, err := f.accounts.EnsureOrganizer(context.Background(), email, "secret1", name)
	require.NoError(t, err)
	return u.Principal()
}

func (f *fixture) createEvent(t *testing.T, owner domain.Principal, in EventInput) domain.Event {
	t.Helper()
	e, err := f.catalog.CreateEvent(context.Background(), owner, in)
	require.NoError(t, err)
	return e
}

func (f *fixture) buy(t *testing.T, p domain.Principal, eventID string, qty int) domain.Ticket {
	t.Helper()
	tk, err := f.ledger.IssueTicket(context.Background(), p, IssueInput{EventID: eventID, Quantity: qty, Payment: card()})
	require.NoError(t, err)
	return tk
}
