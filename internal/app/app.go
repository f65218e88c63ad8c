package app

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventlink/internal/core/auth"
	"eventlink/internal/core/cache"
	"eventlink/internal/core/clock"
	"eventlink/internal/core/config"
	"eventlink/internal/core/database"
	"eventlink/internal/repo"
	"eventlink/internal/repo/memory"
	"eventlink/internal/service"
	"eventlink/internal/transport/http/router"
)

type stores struct {
	tx         service.TxRunner
	users      service.UserStore
	events     service.EventStore
	tickets    service.TicketStore
	categories service.CategoryStore
	payouts    service.PayoutStore
}

// Build 按配置组装存储、缓存、服务与路由依赖；返回的 cleanup 关闭外部连接
func Build(ctx context.Context, cfg *config.Config, l *zap.Logger) (router.Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	st, closeDB, err := openStores(cfg, l)
	if err != nil {
		return router.Deps{}, cleanup, err
	}
	closers = append(closers, closeDB)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(reg)
	clk := clock.NewSystem()

	catalogOpts := []service.CatalogOption{service.WithCatalogMetrics(metrics)}
	if cfg.Redis.Enable {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx); err != nil {
			l.Warn("redis unavailable, event cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
		} else {
			closers = append(closers, func() { _ = c.Close() })
			ttl := time.Duration(cfg.Redis.EventTTLSec) * time.Second
			catalogOpts = append(catalogOpts, service.WithEventCache(cache.NewEventCache(c, ttl, l)))
			l.Info("event cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	catalog := service.NewCatalog(st.tx, st.events, st.tickets, st.categories, l, catalogOpts...)
	gateway := service.NewStubGateway(cfg.Booking.DeclinedLastFour, clk)
	ledger := service.NewLedger(st.tx, st.events, st.tickets, gateway, l,
		service.WithQRAttempts(cfg.Booking.QRAttempts),
		service.WithMaxQuantity(cfg.Booking.MaxQuantity),
		service.WithLedgerMetrics(metrics),
	)
	settlement := service.NewSettlement(st.events, st.tickets, st.payouts, l, service.WithSettlementMetrics(metrics))
	accounts := service.NewAccounts(st.users, st.tickets, clk, l)

	if cfg.DB.SeedCategories {
		if err := catalog.SeedCategories(ctx); err != nil {
			return router.Deps{}, cleanup, err
		}
	}
	if cfg.DB.SeedSampleEvents {
		if err := seedSampleEvents(ctx, accounts, catalog); err != nil {
			return router.Deps{}, cleanup, err
		}
	}

	return router.Deps{
		Log: l,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    cfg.JWT.TTL(),
		},
		Catalog:    catalog,
		Ledger:     ledger,
		Settlement: settlement,
		Accounts:   accounts,
		Limits:     cfg.Limits,
		Origins:    cfg.App.CORSOrigins,
		Registry:   reg,
	}, cleanup, nil
}

// seedSampleEvents 演示数据挂在固定的主办方账号下
func seedSampleEvents(ctx context.Context, accounts *service.Accounts, catalog *service.Catalog) error {
	org, err := accounts.EnsureOrganizer(ctx, service.SampleOrganizerEmail, service.SampleOrganizerPassword, service.SampleOrganizerName)
	if err != nil {
		return err
	}
	_, err = catalog.SeedSampleEvents(ctx, org.Principal(), service.SampleEvents())
	return err
}

func openStores(cfg *config.Config, l *zap.Logger) (stores, func(), error) {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory store; data is lost on restart")
		m := memory.New()
		return stores{
			tx:         m,
			users:      m.Users(),
			events:     m.Events(),
			tickets:    m.Tickets(),
			categories: m.Categories(),
			payouts:    m.Payouts(),
		}, func() {}, nil
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		return stores{}, func() {}, err
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	closeDB := func() {
		if err := database.Close(db); err != nil {
			l.Warn("close database", zap.Error(err))
		}
	}

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(repo.Models()...); err != nil {
			closeDB()
			return stores{}, func() {}, err
		}
		l.Info("automigrate done")
	}
	return gormStores(db), closeDB, nil
}

func gormStores(db *gorm.DB) stores {
	return stores{
		tx:         repo.NewTx(db),
		users:      repo.NewUserRepo(db),
		events:     repo.NewEventRepo(db),
		tickets:    repo.NewTicketRepo(db),
		categories: repo.NewCategoryRepo(db),
		payouts:    repo.NewPayoutRepo(db),
	}
}
