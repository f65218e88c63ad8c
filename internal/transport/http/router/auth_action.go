package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventlink/internal/core/auth"
	"eventlink/internal/domain"
	"eventlink/internal/service"
	httpez "eventlink/internal/transport/http/ez"
)

// authModule /auth/* 公共接口 + /me/* 登录后接口
type authModule struct {
	d        Deps
	authUser *gin.RouterGroup
}

func (authModule) Priority() int { return 10 }

type tokenOut struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func issueFor(j *auth.JWTer, u domain.User) (tokenOut, error) {
	tok, err := j.Issue(u.Principal())
	if err != nil || tok == "" {
		return tokenOut{}, httpez.Internal("issue token failed", err)
	}
	return tokenOut{Token: tok, User: u}, nil
}

func (m authModule) Mount(api *gin.RouterGroup) {
	accounts, jwter := m.d.Accounts, m.d.JWT
	ezPublic := httpez.New(api, m.d.Log)

	type signupIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"fullName" binding:"required,max=128"`
	}
	httpez.RegisterAction(ezPublic, httpez.Action[signupIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *signupIn) (tokenOut, error) {
			u, err := accounts.Signup(c.Request.Context(), in.Email, in.Password, in.FullName)
			if err != nil {
				return tokenOut{}, err
			}
			return issueFor(jwter, u)
		},
	})

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	httpez.RegisterAction(ezPublic, httpez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (tokenOut, error) {
			u, err := accounts.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return tokenOut{}, err
			}
			return issueFor(jwter, u)
		},
	})

	// 鉴权分组：/me 必须挂在带鉴权中间件的分组
	ezAuth := httpez.New(m.authUser, m.d.Log)

	type roleIn struct {
		Role domain.Role `json:"role" binding:"required,oneof=user organizer"`
	}
	httpez.RegisterAction(ezAuth, httpez.Action[roleIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/me/role",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *roleIn) (tokenOut, error) {
			u, err := accounts.SelectRole(c.Request.Context(), httpez.Principal(c), in.Role)
			if err != nil {
				return tokenOut{}, err
			}
			// 角色变了，重新签发 token
			return issueFor(jwter, u)
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.User, error) {
			return accounts.Me(c.Request.Context(), httpez.Principal(c))
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, service.Profile]{
		Method: http.MethodGet,
		Path:   "/me/profile",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.Profile, error) {
			return accounts.Profile(c.Request.Context(), httpez.Principal(c))
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[domain.PaymentDetails, domain.User]{
		Method: http.MethodPut,
		Path:   "/me/payment-method",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.PaymentDetails) (domain.User, error) {
			return accounts.SavePaymentMethod(c.Request.Context(), httpez.Principal(c), *in)
		},
	})
}
