package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusActive, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// Event 由 organizer 独占修改；Capacity 为 nil 表示不限量
type Event struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	OrganizerID string          `gorm:"size:36;not null;index" json:"organizerId"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Location    string          `gorm:"size:255;not null" json:"location"`
	DateTime    time.Time       `gorm:"not null;index" json:"dateTime"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Capacity    *int            `json:"capacity"`
	Category    string          `gorm:"size:64;index" json:"category"`
	ImageURL    string          `gorm:"size:500" json:"imageUrl"`
	Status      EventStatus     `gorm:"size:16;not null;default:active;index" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Event) TableName() string { return "events" }

// EventView 活动 + 主办方名称（列表 / 详情页）
type EventView struct {
	Event
	OrganizerName string `json:"organizerName"`
}

func (e Event) Bookable() bool { return e.Status == EventStatusActive }

// Remaining 剩余可售数量；不限量时 ok=false
func (e Event) Remaining(issued int) (n int, ok bool) {
	if e.Capacity == nil {
		return 0, false
	}
	n = *e.Capacity - issued
	if n < 0 {
		n = 0
	}
	return n, true
}

// Admits 在已售 issued 的情况下是否还能再售 qty 张
func (e Event) Admits(issued, qty int) bool {
	if e.Capacity == nil {
		return true
	}
	return issued+qty <= *e.Capacity
}

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

func (Category) TableName() string { return "categories" }

// DefaultCategories 初始化时写入的分类
var DefaultCategories = []Category{
	{Name: "Concert", Description: "Live music performances"},
	{Name: "Conference", Description: "Professional conferences and seminars"},
	{Name: "Workshop", Description: "Educational workshops and training"},
	{Name: "Sports", Description: "Sporting events and competitions"},
	{Name: "Arts", Description: "Art exhibitions and cultural events"},
	{Name: "Food & Drink", Description: "Food festivals and culinary events"},
	{Name: "Networking", Description: "Business networking events"},
	{Name: "Other", Description: "Other types of events"},
}
