package repo_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventlink/internal/core/clock"
	"eventlink/internal/core/database"
	"eventlink/internal/domain"
	"eventlink/internal/repo"
	"eventlink/internal/service"
)

// newTestDB 连接 TEST_DATABASE_URL 指向的 Postgres；未配置或不可达时跳过
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping Postgres integration tests: TEST_DATABASE_URL not set")
	}
	db, err := database.NewGorm(database.Opts{Driver: "postgres", DSN: dsn, MaxOpenConns: 10, LogLevel: "silent"})
	if err != nil {
		t.Skipf("skipping Postgres integration tests: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		t.Skipf("skipping Postgres integration tests: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(repo.Models()...))
	require.NoError(t, db.Exec("TRUNCATE tickets, events, payout_requests, users, categories RESTART IDENTITY CASCADE").Error)
	return db
}

type services struct {
	catalog    *service.Catalog
	ledger     *service.Ledger
	settlement *service.Settlement
	accounts   *service.Accounts
}

func newServices(db *gorm.DB) services {
	tx := repo.NewTx(db)
	events, tickets := repo.NewEventRepo(db), repo.NewTicketRepo(db)
	c := clock.NewSystem()
	l := zap.NewNop()
	return services{
		catalog:    service.NewCatalog(tx, events, tickets, repo.NewCategoryRepo(db), l),
		ledger:     service.NewLedger(tx, events, tickets, service.NewStubGateway(nil, c), l),
		settlement: service.NewSettlement(events, tickets, repo.NewPayoutRepo(db), l),
		accounts:   service.NewAccounts(repo.NewUserRepo(db), tickets, c, l),
	}
}

func card() domain.PaymentDetails {
	return domain.PaymentDetails{CardNumber: "4242424242424242", Expiry: "12/39", CVV: "123", CardholderName: "PG"}
}

func TestPostgres_NoOversellUnderContention(t *testing.T) {
	db := newTestDB(t)
	s := newServices(db)
	ctx := context.Background()

	org, err := s.accounts.Signup(ctx, "org@pg.test", "secret1", "Org")
	require.NoError(t, err)
	org, err = s.accounts.SelectRole(ctx, org.Principal(), domain.RoleOrganizer)
	require.NoError(t, err)

	capacity := 5
	price := decimal.RequireFromString("25.00")
	e, err := s.catalog.CreateEvent(ctx, org.Principal(), service.EventInput{
		Title: "Contended", Location: "PG", DateTime: time.Now().Add(24 * time.Hour),
		Price: &price, Capacity: &capacity,
	})
	require.NoError(t, err)
	d, err := s.catalog.EventDetail(ctx, domain.Principal{}, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Org", d.OrganizerName)
	assert.Equal(t, 5, *d.Event.Capacity)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := domain.Principal{UserID: fmt.Sprintf("buyer-%02d", i), Role: domain.RoleUser}
			_, err := s.ledger.IssueTicket(ctx, p, service.IssueInput{EventID: e.ID, Quantity: 1, Payment: card()})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, ok)
	assert.Equal(t, 15, full)

	rev, err := s.settlement.EventRevenue(ctx, e.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, rev.TotalQuantity)
	assert.Equal(t, "125.00", rev.Gross.StringFixed(2))
	assert.Equal(t, "112.50", rev.Net.StringFixed(2))

	n, err := s.catalog.DeleteEvent(ctx, org.Principal(), e.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestPostgres_ListAndIdempotency(t *testing.T) {
	db := newTestDB(t)
	s := newServices(db)
	ctx := context.Background()
	require.NoError(t, s.catalog.SeedCategories(ctx))
	require.NoError(t, s.catalog.SeedCategories(ctx))
	cats, err := s.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(domain.DefaultCategories))

	org := domain.Principal{UserID: "org-pg", Role: domain.RoleOrganizer}
	base := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	price := decimal.NewFromInt(10)
	for i, title := range []string{"100% Jazz", "Rock_Night", "Quiet"} {
		_, err := s.catalog.CreateEvent(ctx, org, service.EventInput{
			Title: title, Location: "Hall", DateTime: base.Add(time.Duration(i) * time.Hour),
			Price: &price, Category: "Concert",
		})
		require.NoError(t, err)
	}

	var titles []string
	for e, err := range s.catalog.ListEvents(ctx, domain.EventFilter{Search: "%"}) {
		require.NoError(t, err)
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"100% Jazz"}, titles)

	titles = nil
	for e, err := range s.catalog.ListEvents(ctx, domain.EventFilter{Offset: 1}) {
		require.NoError(t, err)
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Rock_Night", "Quiet"}, titles)

	events, err := s.catalog.OrganizerEvents(ctx, org)
	require.NoError(t, err)
	require.Len(t, events, 3)

	buyer := domain.Principal{UserID: "buyer-pg", Role: domain.RoleUser}
	in := service.IssueInput{EventID: events[0].ID, Quantity: 2, Payment: card(), IdempotencyKey: "pg-1"}
	first, err := s.ledger.IssueTicket(ctx, buyer, in)
	require.NoError(t, err)
	again, err := s.ledger.IssueTicket(ctx, buyer, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var views int
	for v, err := range s.ledger.TicketsForUser(ctx, buyer.UserID) {
		require.NoError(t, err)
		assert.Equal(t, events[0].Title, v.EventTitle)
		views++
	}
	assert.Equal(t, 1, views)
}
