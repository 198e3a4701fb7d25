package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "hostel-backend/internal/config"
	h "hostel-backend/internal/http/handlers"
	"hostel-backend/internal/http/middleware"
	"hostel-backend/internal/services"
)

func NewRouter(env intconfig.Env, hd *h.Handler) *gin.Engine {
	h.SetupValidator()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.AllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "route_not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.POST("/auth/login", hd.Login)

		authed := api.Group("", middleware.RequireAuth(hd.Auth))

		// Payment submission is open to residents as well as staff.
		authed.POST("/payments", middleware.RequireRoles(services.RoleAdmin, services.RoleHostler), hd.SubmitPayment)

		admin := authed.Group("", middleware.RequireRoles(services.RoleAdmin))
		admin.GET("/db-check", hd.DBCheck)
		admin.GET("/routes", hd.Routes)

		// Rooms & beds
		rooms := admin.Group("/rooms")
		rooms.POST("", hd.CreateRoom)
		rooms.GET("", hd.ListRooms)
		rooms.GET("/:id", hd.GetRoom)
		rooms.PUT("/:id", hd.UpdateRoom)
		rooms.DELETE("/:id", hd.DeleteRoom)
		rooms.GET("/:id/beds", hd.ListBeds)
		rooms.GET("/:id/beds/vacant", hd.ListVacantBeds)
		rooms.PUT("/:id/beds/:bed", hd.SetBedStatus)
		admin.GET("/occupancy", hd.Occupancy)

		// Hostlers
		hostlers := admin.Group("/hostlers")
		hostlers.POST("", hd.CreateHostler)
		hostlers.GET("", hd.ListHostlers)
		hostlers.GET("/:id", hd.GetHostler)
		hostlers.PUT("/:id", hd.UpdateHostler)
		hostlers.DELETE("/:id", hd.DeleteHostler)
		hostlers.GET("/:id/billing", hd.GetHostlerBilling)
		hostlers.GET("/:id/payments", hd.GetHostlerPayments)
		hostlers.GET("/:id/statement", hd.GetHostlerStatement)

		// Payments
		payments := admin.Group("/payments")
		payments.GET("", hd.ListPayments)
		payments.GET("/:id", hd.GetPayment)
		payments.PUT("/:id/approve", hd.ApprovePayment)
		payments.PUT("/:id/reject", hd.RejectPayment)
		payments.GET("/:id/receipt", hd.GetPaymentReceipt)

		// Reports
		admin.GET("/reports/payments", hd.PaymentReport)
		admin.GET("/dashboard", hd.Dashboard)
		admin.GET("/dues", hd.PendingDues)

		// Maintenance
		maint := admin.Group("/maintenance")
		maint.POST("/refresh-status", hd.RefreshStatus)
		maint.POST("/reconcile", hd.Reconcile)
	}

	h.SetRouter(r)
	return r
}
