package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"eventlink/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims sub = user id；role 随 token 下发，选择角色后需要重新签发
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() domain.Principal {
	return domain.Principal{UserID: c.Subject, Role: c.Role}
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Leeway 允许的时钟偏差
	Leeway time.Duration
}

func (j *JWTer) Issue(p domain.Principal) (string, error) {
	if p.UserID == "" || !p.Role.Valid() {
		return "", ErrInvalidToken
	}
	now := time.Now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

// Parse 只接受 HS256，且 sub / exp / role 必须齐全
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	leeway := j.Leeway
	if leeway == 0 {
		leeway = time.Minute
	}
	var c Claims
	t, err := jwt.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) { return j.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !t.Valid || c.Subject == "" || !c.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
