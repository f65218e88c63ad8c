package repo

import "eventlink/internal/domain"

// Models AutoMigrate 的模型列表
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Category{},
		&domain.Event{},
		&domain.Ticket{},
		&domain.PayoutRequest{},
	}
}
