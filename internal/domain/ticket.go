package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Ticket 购买成功后一次性写入，之后不可修改；只随 event 删除而级联删除
type Ticket struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:36;not null;index;uniqueIndex:idx_ticket_idem,priority:1" json:"userId"`
	EventID        string    `gorm:"size:36;not null;index" json:"eventId"`
	PurchaseDate   time.Time `gorm:"not null" json:"purchaseDate"`
	Quantity       int       `gorm:"not null;default:1" json:"quantity"`
	QRCode         string    `gorm:"column:qr_code;size:191;not null;uniqueIndex" json:"qrCode"`
	IdempotencyKey *string   `gorm:"size:64;uniqueIndex:idx_ticket_idem,priority:2" json:"-"`
}

func (Ticket) TableName() string { return "tickets" }

// TicketView 票 + 下单时关联的活动快照（我的票列表）
type TicketView struct {
	Ticket
	EventTitle    string          `json:"eventTitle"`
	EventDateTime time.Time       `json:"eventDateTime"`
	EventLocation string          `json:"eventLocation"`
	EventPrice    decimal.Decimal `json:"eventPrice"`
	EventStatus   EventStatus     `json:"eventStatus"`
	OrganizerName string          `json:"organizerName"`
}

const qrPrefix = "EVENTLINK-TICKET-"

var qrPattern = regexp.MustCompile(`^EVENTLINK-TICKET-([0-9a-f]{8})-(.+)$`)

// NewQRSegment 8 位小写 hex，来自 crypto/rand
func NewQRSegment() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func FormatQRCode(segment, userID, eventID string) string {
	return fmt.Sprintf("%s%s-%s-%s", qrPrefix, segment, userID, eventID)
}

// ValidQRCode 只校验格式，不校验归属
func ValidQRCode(code string) bool { return qrPattern.MatchString(code) }
