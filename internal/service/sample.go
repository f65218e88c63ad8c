package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"eventlink/internal/domain"
)

// 演示主办方账号，sample 活动都挂在它名下
const (
	SampleOrganizerEmail    = "organizer@eventlink.com"
	SampleOrganizerPassword = "dummy123"
	SampleOrganizerName     = "Event Organizer"
)

func sampleImage(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?auto=format&fit=crop&w=800&q=80"
}

func sampleAt(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func samplePrice(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// SampleEvents 本地演示数据
func SampleEvents() []EventInput {
	return []EventInput{
		{
			Title:       "Midnight Jazz Sessions",
			Description: "Intimate jazz night featuring local musicians. Cocktails and small plates served throughout the evening.",
			Location:    "Blue Note Lounge, Downtown District",
			DateTime:    sampleAt("2026-01-15 21:00"),
			Price:       samplePrice("25.00"),
			Capacity:    intRef(80),
			Category:    "Music",
			ImageURL:    sampleImage("1511671782779-c97d3d27a1d4"),
		},
		{
			Title:       "Electro Night Festival",
			Description: "All-night electronic dance music festival with top DJs. Open bar until midnight.",
			Location:    "Club Pulse, Entertainment Quarter",
			DateTime:    sampleAt("2026-01-18 22:00"),
			Price:       samplePrice("45.00"),
			Capacity:    intRef(300),
			Category:    "Music",
			ImageURL:    sampleImage("1470229722913-7c0e2dbbafd3"),
		},
		{
			Title:       "Craft Beer Tasting",
			Description: "Sample 20+ local craft beers with food pairings. Meet the brewers and learn about brewing techniques.",
			Location:    "Hop House Brewery, Industrial District",
			DateTime:    sampleAt("2026-01-20 18:30"),
			Price:       samplePrice("35.00"),
			Capacity:    intRef(60),
			Category:    "Food & Drink",
			ImageURL:    sampleImage("1585345242804-9c0f1b4a2c4d"),
		},
		{
			Title:       "Rooftop Sunset Cocktails",
			Description: "Elegant rooftop party with signature cocktails and panoramic city views. Dress code: smart casual.",
			Location:    "Sky Lounge Hotel, Financial District",
			DateTime:    sampleAt("2026-01-22 17:00"),
			Price:       samplePrice("60.00"),
			Capacity:    intRef(120),
			Category:    "Food & Drink",
			ImageURL:    sampleImage("1552566626-52f8b828add9"),
		},
		{
			Title:       "Live Acoustic Evening",
			Description: "Relaxed acoustic performances in an intimate setting. Wine and cheese platters available.",
			Location:    "The Wooden Spoon, Arts District",
			DateTime:    sampleAt("2026-01-25 19:30"),
			Price:       samplePrice("20.00"),
			Capacity:    intRef(50),
			Category:    "Music",
			ImageURL:    sampleImage("1470225620780-dba8ba36b745"),
		},
		{
			Title:       "Whiskey Wednesday",
			Description: "Premium whiskey tasting with master distiller. Learn about different whiskey varieties and aging processes.",
			Location:    "The Oak Barrel, Heritage Street",
			DateTime:    sampleAt("2026-01-29 19:00"),
			Price:       samplePrice("40.00"),
			Capacity:    intRef(40),
			Category:    "Food & Drink",
			ImageURL:    sampleImage("1609833055954-5c1e3dc20973"),
		},
		{
			Title:       "Latin Night Fiesta",
			Description: "Vibrant Latin music and dance night. Professional instructors for salsa and bachata lessons.",
			Location:    "Casa Latina Club, Cultural Quarter",
			DateTime:    sampleAt("2026-02-01 20:30"),
			Price:       samplePrice("30.00"),
			Capacity:    intRef(150),
			Category:    "Music",
			ImageURL:    sampleImage("1509670811598-834b6d3be3b3"),
		},
		{
			Title:       "Champagne & Caviar Brunch",
			Description: "Luxury brunch experience with premium champagne and caviar service. Live piano accompaniment.",
			Location:    "Grand Royale Hotel, Luxury District",
			DateTime:    sampleAt("2026-02-05 11:00"),
			Price:       samplePrice("85.00"),
			Capacity:    intRef(80),
			Category:    "Food & Drink",
			ImageURL:    sampleImage("1559847844-d8a8bf309bc8"),
		},
	}
}

func intRef(n int) *int { return &n }

// EnsureOrganizer 按邮箱查找主办方，不存在则注册并选择 organizer 角色
func (a *Accounts) EnsureOrganizer(ctx context.Context, email, password, fullName string) (domain.User, error) {
	u, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.User{}, err
	}
	if u == nil {
		created, err := a.Signup(ctx, email, password, fullName)
		if err != nil {
			return domain.User{}, err
		}
		u = &created
	}
	switch u.Role {
	case domain.RoleOrganizer:
		return *u, nil
	case domain.RolePending:
		return a.SelectRole(ctx, u.Principal(), domain.RoleOrganizer)
	default:
		return domain.User{}, domain.Invalid("email", email+" is not an organizer")
	}
}

// SeedSampleEvents 已有任何活动时跳过；返回新建的活动数
func (s *Catalog) SeedSampleEvents(ctx context.Context, owner domain.Principal, samples []EventInput) (int, error) {
	n, err := s.events.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug("sample events skipped", zap.Int64("existing", n))
		return 0, nil
	}
	for i, in := range samples {
		if _, err := s.CreateEvent(ctx, owner, in); err != nil {
			return i, err
		}
	}
	s.log.Info("sample events seeded", zap.Int("count", len(samples)), zap.String("organizer_id", owner.UserID))
	return len(samples), nil
}
