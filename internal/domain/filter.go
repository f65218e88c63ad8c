package domain

import "github.com/shopspring/decimal"

// EventFilter 列表过滤条件；Status 为空时按 active 处理
type EventFilter struct {
	Category string
	Search   string
	Status   EventStatus
	Offset   int
	Limit    int
}

// EventSales 单个活动的出票汇总
type EventSales struct {
	TicketCount   int64
	TotalQuantity int64
}

// UserStats 个人中心统计
type UserStats struct {
	TotalTickets int64
	TotalSpent   decimal.Decimal
}
