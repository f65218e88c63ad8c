package router

import (
	"iter"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventlink/internal/domain"
	"eventlink/internal/service"
	httpez "eventlink/internal/transport/http/ez"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// eventsModule 浏览 + 购票 + 我的票
type eventsModule struct {
	d        Deps
	authUser *gin.RouterGroup
}

func (eventsModule) Priority() int { return 20 }

type listQ struct {
	Category string             `form:"category"`
	Q        string             `form:"q"`
	Status   domain.EventStatus `form:"status"`
	Offset   int                `form:"offset,default=0" binding:"min=0"`
	Limit    int                `form:"limit,default=20" binding:"min=0,max=100"`
}

func (q listQ) filter() domain.EventFilter {
	limit := q.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return domain.EventFilter{
		Category: q.Category,
		Search:   q.Q,
		Status:   q.Status,
		Offset:   q.Offset,
		Limit:    limit,
	}
}

// collect 把惰性序列读完；遇到第一个错误即返回
func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := make([]T, 0)
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type pageOut[T any] struct {
	Items  []T `json:"items"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func (m eventsModule) Mount(api *gin.RouterGroup) {
	catalog, ledger := m.d.Catalog, m.d.Ledger
	ezPublic := httpez.New(api, m.d.Log)

	httpez.RegisterAction(ezPublic, httpez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Category, error) {
			return catalog.Categories(c.Request.Context())
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[listQ, pageOut[domain.EventView]]{
		Method: http.MethodGet,
		Path:   "/events",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (pageOut[domain.EventView], error) {
			f := in.filter()
			items, err := collect(catalog.ListEvents(c.Request.Context(), f))
			if err != nil {
				return pageOut[domain.EventView]{}, err
			}
			return pageOut[domain.EventView]{Items: items, Offset: f.Offset, Limit: f.Limit}, nil
		},
	})

	// 匿名也可访问；带 token 时返回 hasTicket
	httpez.RegisterAction(ezPublic, httpez.Action[struct{}, service.EventDetail]{
		Method: http.MethodGet,
		Path:   "/events/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.EventDetail, error) {
			return catalog.EventDetail(c.Request.Context(), httpez.Principal(c), c.Param("id"))
		},
	})

	ezAuth := httpez.New(m.authUser, m.d.Log)

	type purchaseIn struct {
		Quantity int                   `json:"quantity" binding:"omitempty,min=1"`
		Payment  domain.PaymentDetails `json:"payment"`
	}
	httpez.RegisterAction(ezAuth, httpez.Action[purchaseIn, domain.Ticket]{
		Method: http.MethodPost,
		Path:   "/events/:id/tickets",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  []domain.Role{domain.RoleUser, domain.RoleOrganizer},
		Handler: func(c *gin.Context, in *purchaseIn) (domain.Ticket, error) {
			return ledger.IssueTicket(c.Request.Context(), httpez.Principal(c), service.IssueInput{
				EventID:        c.Param("id"),
				Quantity:       in.Quantity,
				Payment:        in.Payment,
				IdempotencyKey: c.GetHeader("Idempotency-Key"),
			})
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, []domain.TicketView]{
		Method: http.MethodGet,
		Path:   "/me/tickets",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.TicketView, error) {
			return collect(ledger.TicketsForUser(c.Request.Context(), httpez.Principal(c).UserID))
		},
	})
}
