package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlink/internal/domain"
)

func TestAccounts_SignupAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.accounts.Signup(ctx, " Ada@Example.com ", "secret1", "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, domain.RolePending, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = f.accounts.Signup(ctx, "ada@example.com", "another1", "Imposter")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := f.accounts.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.accounts.Login(ctx, "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.accounts.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	t.Run("validation", func(t *testing.T) {
		for _, in := range [][3]string{
			{"not-an-email", "secret1", "X"},
			{"x@example.com", "short", "X"},
			{"x@example.com", "secret1", "  "},
			{"x@example.com", strings.Repeat("p", 73), "X"},
		} {
			_, err := f.accounts.Signup(ctx, in[0], in[1], in[2])
			assert.ErrorIs(t, err, domain.ErrValidation, in)
		}
	})
}

func TestAccounts_SelectRoleOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u, err := f.accounts.Signup(ctx, "org@example.com", "secret1", "Org")
	require.NoError(t, err)
	p := u.Principal()

	_, err = f.accounts.SelectRole(ctx, p, domain.RolePending)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.accounts.SelectRole(ctx, p, domain.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOrganizer, got.Role)

	_, err = f.accounts.SelectRole(ctx, p, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.accounts.SelectRole(ctx, domain.Principal{UserID: "ghost", Role: domain.RolePending}, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAccounts_ProfileAndPaymentMethod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u, err := f.accounts.Signup(ctx, "fan@example.com", "secret1", "Fan")
	require.NoError(t, err)
	u, err = f.accounts.SelectRole(ctx, u.Principal(), domain.RoleUser)
	require.NoError(t, err)
	p := u.Principal()

	_, err = f.accounts.SavePaymentMethod(ctx, p, domain.PaymentDetails{
		CardNumber: "1111 2222 3333 4444", Expiry: "01/29", CVV: "999",
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	me, err := f.accounts.Me(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, me.PaymentMethod)

	saved, err := f.accounts.SavePaymentMethod(ctx, p, domain.PaymentDetails{
		CardNumber: "1111 2222 3333 4444", Expiry: "01/29", CVV: "999", CardholderName: "Fan",
	})
	require.NoError(t, err)
	assert.Equal(t, "**** **** **** 4444", saved.PaymentMethod)
	assert.Equal(t, "4444", saved.CardLastFour)

	_, err = f.accounts.SavePaymentMethod(ctx, p, domain.PaymentDetails{CardNumber: "123"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	e := f.createEvent(t, organizer("org-1"), eventInput("Show", "12.50", nil))
	f.buy(t, p, e.ID, 2)
	f.buy(t, p, e.ID, 1)

	prof, err := f.accounts.Profile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, u.ID, prof.User.ID)
	assert.EqualValues(t, 2, prof.Stats.TotalTickets)
	assert.Equal(t, "37.50", prof.Stats.TotalSpent.StringFixed(2))

	_, err = f.accounts.Me(ctx, domain.Principal{UserID: "ghost", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
