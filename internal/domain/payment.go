package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDetails 原始卡信息，只在请求内流转，从不落库
type PaymentDetails struct {
	CardNumber     string `json:"cardNumber"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	cvvPattern    = regexp.MustCompile(`^[0-9]{3,4}$`)
	digitsPattern = regexp.MustCompile(`^[0-9]{16}$`)
)

// Digits 去掉空格后的卡号
func (p PaymentDetails) Digits() string { return strings.ReplaceAll(p.CardNumber, " ", "") }

// Masked 仅保留后四位
func (p PaymentDetails) Masked() string { return "**** **** **** " + p.LastFour() }

func (p PaymentDetails) LastFour() string {
	d := p.Digits()
	if len(d) < 4 {
		return d
	}
	return d[len(d)-4:]
}

// Validate 格式校验，购票与保存支付方式共用；四项均为必填
func (p PaymentDetails) Validate() error {
	if strings.TrimSpace(p.CardNumber) == "" {
		return Invalid("cardNumber", "required")
	}
	if !digitsPattern.MatchString(p.Digits()) {
		return Invalid("cardNumber", "must be 16 digits")
	}
	if !expiryPattern.MatchString(strings.TrimSpace(p.Expiry)) {
		return Invalid("expiry", "must be MM/YY")
	}
	if !cvvPattern.MatchString(strings.TrimSpace(p.CVV)) {
		return Invalid("cvv", "must be 3 or 4 digits")
	}
	if strings.TrimSpace(p.CardholderName) == "" {
		return Invalid("cardholderName", "required")
	}
	return nil
}

type PayoutStatus string

const PayoutStatusRequested PayoutStatus = "requested"

// PayoutRequest 只记录申请，不跟踪可提现余额
type PayoutRequest struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	OrganizerID string          `gorm:"size:36;not null;index" json:"organizerId"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Destination string          `gorm:"size:255;not null" json:"destination"`
	Status      PayoutStatus    `gorm:"size:16;not null" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (PayoutRequest) TableName() string { return "payout_requests" }
