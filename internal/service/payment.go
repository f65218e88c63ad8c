package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"eventlink/internal/core/clock"
	"eventlink/internal/domain"
)

var (
	errCardDeclined = errors.New("card declined")
	errCardExpired  = errors.New("card expired")
)

// StubGateway 不对接真实支付；按卡号后四位黑名单和有效期模拟拒付
type StubGateway struct {
	declined map[string]struct{}
	clock    clock.Clock
}

func NewStubGateway(declinedLastFour []string, c clock.Clock) *StubGateway {
	if c == nil {
		c = clock.NewSystem()
	}
	m := make(map[string]struct{}, len(declinedLastFour))
	for _, s := range declinedLastFour {
		m[strings.TrimSpace(s)] = struct{}{}
	}
	return &StubGateway{declined: m, clock: c}
}

func (g *StubGateway) Authorize(ctx context.Context, d domain.PaymentDetails, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if _, ok := g.declined[d.LastFour()]; ok {
		return errCardDeclined
	}
	if expired(d.Expiry, g.clock) {
		return errCardExpired
	}
	return nil
}

// expired MM/YY 表示该月最后一天仍有效
func expired(expiry string, c clock.Clock) bool {
	mm, yy, ok := strings.Cut(strings.TrimSpace(expiry), "/")
	if !ok {
		return true
	}
	m, err1 := strconv.Atoi(mm)
	y, err2 := strconv.Atoi(yy)
	if err1 != nil || err2 != nil {
		return true
	}
	now := c.Now()
	year := 2000 + y
	return year < now.Year() || (year == now.Year() && m < int(now.Month()))
}
