package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"eventlink/internal/domain"
	"eventlink/internal/service"
	httpez "eventlink/internal/transport/http/ez"
)

// organizerModule 活动管理 + 收入 + 提现；分组已要求 organizer 角色
type organizerModule struct{ d Deps }

type eventIn struct {
	Title       string           `json:"title"       binding:"required,max=200"`
	Description string           `json:"description"`
	Location    string           `json:"location"    binding:"required,max=255"`
	DateTime    time.Time        `json:"dateTime"    binding:"required"`
	Price       *decimal.Decimal `json:"price"       binding:"required"`
	Capacity    *int             `json:"capacity"    binding:"omitempty,min=0"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"imageUrl"    binding:"max=500"`
}

type eventPatchIn struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Location    *string          `json:"location"`
	DateTime    *time.Time       `json:"dateTime"`
	Price       *decimal.Decimal `json:"price"`
	Capacity    *int             `json:"capacity"`
	Unlimited   bool             `json:"unlimited"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"imageUrl"`
	Status      *string          `json:"status"`
}

func (in eventPatchIn) patch() service.EventPatch {
	p := service.EventPatch{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		DateTime:    in.DateTime,
		Price:       in.Price,
		Capacity:    in.Capacity,
		Unlimited:   in.Unlimited,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	}
	if in.Status != nil {
		s := domain.EventStatus(*in.Status)
		p.Status = &s
	}
	return p
}

type deleteOut struct {
	ID             string `json:"id"`
	TicketsRemoved int64  `json:"ticketsRemoved"`
}

type payoutIn struct {
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination" binding:"required,max=255"`
}

func (m organizerModule) Mount(g *gin.RouterGroup) {
	catalog, ledger, settlement := m.d.Catalog, m.d.Ledger, m.d.Settlement
	ez := httpez.New(g, m.d.Log)

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Event]{
		Method: http.MethodGet,
		Path:   "/events",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Event, error) {
			return catalog.OrganizerEvents(c.Request.Context(), httpez.Principal(c))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[eventIn, domain.Event]{
		Method: http.MethodPost,
		Path:   "/events",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *eventIn) (domain.Event, error) {
			return catalog.CreateEvent(c.Request.Context(), httpez.Principal(c), service.EventInput{
				Title:       in.Title,
				Description: in.Description,
				Location:    in.Location,
				DateTime:    in.DateTime,
				Price:       in.Price,
				Capacity:    in.Capacity,
				Category:    in.Category,
				ImageURL:    in.ImageURL,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, domain.Event]{
		Method: http.MethodGet,
		Path:   "/events/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Event, error) {
			return catalog.OwnedEvent(c.Request.Context(), httpez.Principal(c), c.Param("id"))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[eventPatchIn, domain.Event]{
		Method: http.MethodPut,
		Path:   "/events/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *eventPatchIn) (domain.Event, error) {
			return catalog.UpdateEvent(c.Request.Context(), httpez.Principal(c), c.Param("id"), in.patch())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, deleteOut]{
		Method: http.MethodDelete,
		Path:   "/events/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (deleteOut, error) {
			id := c.Param("id")
			n, err := catalog.DeleteEvent(c.Request.Context(), httpez.Principal(c), id)
			if err != nil {
				return deleteOut{}, err
			}
			return deleteOut{ID: id, TicketsRemoved: n}, nil
		},
	})

	for path, status := range map[string]domain.EventStatus{
		"/events/:id/cancel":   domain.EventStatusCancelled,
		"/events/:id/complete": domain.EventStatusCompleted,
	} {
		httpez.RegisterAction(ez, httpez.Action[struct{}, domain.Event]{
			Method: http.MethodPost,
			Path:   path,
			Binder: httpez.BindNone,
			Auth:   true,
			Handler: func(c *gin.Context, _ *struct{}) (domain.Event, error) {
				return catalog.SetStatus(c.Request.Context(), httpez.Principal(c), c.Param("id"), status)
			},
		})
	}

	httpez.RegisterAction(ez, httpez.Action[struct{}, service.Revenue]{
		Method: http.MethodGet,
		Path:   "/events/:id/revenue",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.Revenue, error) {
			return settlement.OwnedEventRevenue(c.Request.Context(), httpez.Principal(c), c.Param("id"))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Ticket]{
		Method: http.MethodGet,
		Path:   "/events/:id/tickets",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Ticket, error) {
			e, err := catalog.OwnedEvent(c.Request.Context(), httpez.Principal(c), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return ledger.TicketsForEvent(c.Request.Context(), e.ID)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, service.Summary]{
		Method: http.MethodGet,
		Path:   "/summary",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.Summary, error) {
			return settlement.OrganizerSummary(c.Request.Context(), httpez.Principal(c))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[payoutIn, service.PayoutReceipt]{
		Method: http.MethodPost,
		Path:   "/payouts",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *payoutIn) (service.PayoutReceipt, error) {
			return settlement.RequestPayout(c.Request.Context(), httpez.Principal(c), in.Amount, in.Destination)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.PayoutRequest]{
		Method: http.MethodGet,
		Path:   "/payouts",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.PayoutRequest, error) {
			return settlement.Payouts(c.Request.Context(), httpez.Principal(c))
		},
	})
}
