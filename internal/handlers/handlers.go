package handlers

import (
	"net/http"

	_ "github.com/boostmart/boostmart/docs"
	"github.com/boostmart/boostmart/internal/config"
	"github.com/boostmart/boostmart/internal/domain"
	authhandlers "github.com/boostmart/boostmart/internal/handlers/auth"
	balancehandlers "github.com/boostmart/boostmart/internal/handlers/balance"
	ordershandlers "github.com/boostmart/boostmart/internal/handlers/orders"
	usershandlers "github.com/boostmart/boostmart/internal/handlers/users"
	"github.com/boostmart/boostmart/internal/service"
	"github.com/boostmart/boostmart/internal/ws"
	"github.com/boostmart/boostmart/pkg/auth"
	"github.com/boostmart/boostmart/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	GetRanks(w http.ResponseWriter, r *http.Request)
	GetQuote(w http.ResponseWriter, r *http.Request)
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	ClaimOrder(w http.ResponseWriter, r *http.Request)
	CompleteOrder(w http.ResponseWriter, r *http.Request)
	CancelOrder(w http.ResponseWriter, r *http.Request)
	PostMessage(w http.ResponseWriter, r *http.Request)
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	GetUsers(w http.ResponseWriter, r *http.Request)
	UpdateRole(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	GetCount(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Deposit(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	OrderHandler   OrderHandler
	UserHandler    UserHandler
	BalanceHandler BalanceHandler
}

func New(s *service.Services, hub *ws.Hub) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService),
		OrderHandler:   ordershandlers.New(s.OrderService, hub),
		UserHandler:    usershandlers.New(s.UserService),
		BalanceHandler: balancehandlers.New(s.BalanceService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router, jwtService auth.JWTServiceInterface, cfg *config.Config) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		metrics.Middleware(),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Get("/api/ranks", h.OrderHandler.GetRanks)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)
		r.Get("/count", h.UserHandler.GetCount)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(jwtService))
			r.Get("/me", h.AuthHandler.Me)
			r.Route("/balance", func(r chi.Router) {
				r.Get("/", h.BalanceHandler.GetBalance)
				r.Post("/deposit", h.BalanceHandler.Deposit)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin))
				r.Get("/", h.UserHandler.GetUsers)
				r.Patch("/{id}/role", h.UserHandler.UpdateRole)
				r.Delete("/{id}", h.UserHandler.DeleteUser)
			})
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(jwtService))
		r.Get("/", h.OrderHandler.GetOrders)
		r.Post("/", h.OrderHandler.CreateOrder)
		r.Get("/quote", h.OrderHandler.GetQuote)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.OrderHandler.GetOrder)
			r.Post("/claim", h.OrderHandler.ClaimOrder)
			r.Post("/complete", h.OrderHandler.CompleteOrder)
			r.Post("/cancel", h.OrderHandler.CancelOrder)
			r.Post("/messages", h.OrderHandler.PostMessage)
			r.Get("/ws", h.OrderHandler.ServeWS)
		})
	})

	return r
}
