package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"eventlink/internal/core/clock"
	"eventlink/internal/domain"
	"eventlink/pkg/utils"
)

const minPasswordLen = 6

// Profile 个人中心：用户 + 购票统计
type Profile struct {
	User  domain.User      `json:"user"`
	Stats domain.UserStats `json:"stats"`
}

// Accounts 身份层：注册后角色为 pending，需自行选择 user / organizer 一次
type Accounts struct {
	users   UserStore
	tickets TicketStore
	clock   clock.Clock
	log     *zap.Logger
}

func NewAccounts(users UserStore, tickets TicketStore, c clock.Clock, l *zap.Logger) *Accounts {
	if l == nil {
		l = zap.NewNop()
	}
	if c == nil {
		c = clock.NewSystem()
	}
	return &Accounts{users: users, tickets: tickets, clock: c, log: l}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (a *Accounts) Signup(ctx context.Context, email, password, fullName string) (domain.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, domain.Invalid("email", "invalid email")
	}
	if len(password) < minPasswordLen {
		return domain.User{}, domain.Invalid("password", "too short")
	}
	if len(password) > utils.MaxPasswordBytes {
		return domain.User{}, domain.Invalid("password", "too long")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.User{}, domain.Invalid("fullName", "required")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	now := a.clock.Now()
	u := domain.User{
		ID:           utils.NewID(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         domain.RolePending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.users.Create(ctx, &u); err != nil {
		return domain.User{}, err
	}
	a.log.Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

// Login 邮箱不存在与密码错误返回同一个错误
func (a *Accounts) Login(ctx context.Context, email, password string) (domain.User, error) {
	u, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.User{}, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return *u, nil
}

// SelectRole 只能由本人在 pending 状态下设置一次
func (a *Accounts) SelectRole(ctx context.Context, p domain.Principal, role domain.Role) (domain.User, error) {
	if p.UserID == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	if role != domain.RoleUser && role != domain.RoleOrganizer {
		return domain.User{}, domain.Invalid("role", "must be user or organizer")
	}
	ok, err := a.users.UpdateRoleFromPending(ctx, p.UserID, role)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		u, err := a.users.FindByID(ctx, p.UserID)
		if err != nil {
			return domain.User{}, err
		}
		if u == nil {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, domain.ErrInvalidTransition
	}
	a.log.Info("role selected", zap.String("user_id", p.UserID), zap.String("role", string(role)))
	return a.Me(ctx, p)
}

func (a *Accounts) Me(ctx context.Context, p domain.Principal) (domain.User, error) {
	if p.UserID == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	u, err := a.users.FindByID(ctx, p.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if u == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *u, nil
}

func (a *Accounts) Profile(ctx context.Context, p domain.Principal) (Profile, error) {
	u, err := a.Me(ctx, p)
	if err != nil {
		return Profile{}, err
	}
	stats, err := a.tickets.UserStats(ctx, u.ID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, Stats: stats}, nil
}

// SavePaymentMethod 只保存掩码与后四位
func (a *Accounts) SavePaymentMethod(ctx context.Context, p domain.Principal, d domain.PaymentDetails) (domain.User, error) {
	if p.UserID == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err := d.Validate(); err != nil {
		return domain.User{}, err
	}
	if err := a.users.UpdatePaymentMethod(ctx, p.UserID, d.Masked(), d.LastFour()); err != nil {
		return domain.User{}, err
	}
	return a.Me(ctx, p)
}
