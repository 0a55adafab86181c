package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/kosboard/internal/auth"
	"github.com/lalith-99/kosboard/internal/events"
	"github.com/lalith-99/kosboard/internal/middleware"
	"github.com/lalith-99/kosboard/internal/observ"
	"github.com/lalith-99/kosboard/internal/repository"
	"github.com/lalith-99/kosboard/internal/service"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Service   *service.Service
	Users     repository.UserRepository
	Revoker   auth.Revoker
	Hub       *events.Hub
	Metrics   *observ.Metrics
	Ping      Pinger
	Store     string
	JWTSecret string
	JWTTTL    time.Duration
	Logger    *zap.Logger
}

// NewRouter wires every route. Public: health, metrics, login and the
// room listing. Tenants may read their own tenancies and payments; the
// dashboard, the event stream and every write need the admin role.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(d.Logger), middleware.AccessLog(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	authH := NewAuthHandler(d.Users, d.Revoker, d.JWTSecret, d.JWTTTL, d.Logger)
	rooms := NewRoomHandler(d.Service, d.Logger)
	tenants := NewTenantHandler(d.Service, d.Logger)
	payments := NewPaymentHandler(d.Service, d.Logger)
	dashboard := NewDashboardHandler(d.Service, d.Logger)
	health := NewHealthHandler(d.Ping, d.Store, d.Logger)

	v1 := r.Group("/v1")
	v1.GET("/health", health.Get)
	v1.POST("/auth/login", authH.Login)
	v1.GET("/rooms", rooms.List)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(d.JWTSecret, d.Revoker, d.Logger))
	authed.POST("/auth/logout", authH.Logout)
	authed.GET("/rooms/:id", rooms.GetByID)
	authed.GET("/tenants", tenants.List)
	authed.GET("/tenants/:id", tenants.GetByID)
	authed.GET("/payments", payments.List)

	if d.Hub != nil {
		v1.GET("/events",
			middleware.WebsocketAuth(d.JWTSecret, d.Revoker, d.Logger),
			middleware.RequireAdmin(),
			NewEventsHandler(d.Hub, d.Logger).Stream,
		)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/dashboard", dashboard.Get)
	admin.POST("/rooms", rooms.Create)
	admin.PUT("/rooms/:id", rooms.Update)
	admin.DELETE("/rooms/:id", rooms.Delete)
	admin.POST("/tenants", tenants.CheckIn)
	admin.DELETE("/tenants/:id", tenants.CheckOut)
	admin.POST("/payments", payments.Create)
	admin.PUT("/payments/:id", payments.Update)
	admin.DELETE("/payments/:id", payments.Delete)

	return r
}
