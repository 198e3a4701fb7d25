package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/http/middleware"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/services"
	"hostel-backend/internal/utils"
)

// Handler carries the stores every endpoint works against. Services are
// built per request so each one logs under that request's id.
type Handler struct {
	Rooms       repositories.RoomStore
	Hostlers    repositories.HostlerStore
	Payments    repositories.PaymentStore
	Auth        services.AuthService
	Clock       utils.Clock
	PaymentLink string
	// Ping reports store health for /api/db-check; nil means always healthy.
	Ping func(ctx context.Context) error
}

func (h *Handler) now() time.Time {
	if h.Clock == nil {
		return utils.NowUTC()
	}
	return h.Clock.Now()
}

func (h *Handler) roomSvc(c *gin.Context) services.RoomService {
	return services.RoomService{Rooms: h.Rooms, Hostlers: h.Hostlers, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) allocSvc(c *gin.Context) services.AllocationService {
	return services.AllocationService{Rooms: h.Rooms, Hostlers: h.Hostlers, Payments: h.Payments, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) paymentSvc(c *gin.Context) services.PaymentService {
	return services.PaymentService{Payments: h.Payments, Hostlers: h.Hostlers, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) billingSvc(c *gin.Context) services.BillingService {
	return services.BillingService{Rooms: h.Rooms, Hostlers: h.Hostlers, Payments: h.Payments, PaymentLink: h.PaymentLink, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) docsSvc(c *gin.Context) services.DocsService {
	return services.DocsService{Payments: h.Payments, Hostlers: h.Hostlers, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) authSvc(c *gin.Context) services.AuthService {
	a := h.Auth
	a.RequestID = middleware.GetRequestID(c)
	return a
}
