package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() PaymentDetails {
	return PaymentDetails{
		CardNumber:     "4242 4242 4242 4242",
		Expiry:         "12/30",
		CVV:            "123",
		CardholderName: "Ada Lovelace",
	}
}

func TestPaymentDetailsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validCard().Validate())

	cases := map[string]struct {
		mutate func(*PaymentDetails)
		field  string
	}{
		"empty card":       {func(p *PaymentDetails) { p.CardNumber = "" }, "cardNumber"},
		"short card":       {func(p *PaymentDetails) { p.CardNumber = "4242 4242" }, "cardNumber"},
		"letters in card":  {func(p *PaymentDetails) { p.CardNumber = "4242 4242 4242 424x" }, "cardNumber"},
		"bad expiry month": {func(p *PaymentDetails) { p.Expiry = "13/30" }, "expiry"},
		"bad expiry shape": {func(p *PaymentDetails) { p.Expiry = "1230" }, "expiry"},
		"short cvv":        {func(p *PaymentDetails) { p.CVV = "12" }, "cvv"},
		"missing name":     {func(p *PaymentDetails) { p.CardholderName = " " }, "cardholderName"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := validCard()
			tc.mutate(&p)
			err := p.Validate()
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	t.Run("four digit cvv", func(t *testing.T) {
		p := validCard()
		p.CVV = "1234"
		assert.NoError(t, p.Validate())
	})
}

func TestPaymentDetailsMasked(t *testing.T) {
	t.Parallel()

	p := validCard()
	p.CardNumber = "1111 2222 3333 4444"
	assert.Equal(t, "4444", p.LastFour())
	assert.Equal(t, "**** **** **** 4444", p.Masked())
}
