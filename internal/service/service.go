package service

import (
	"github.com/boostmart/boostmart/internal/pg"
	"github.com/boostmart/boostmart/internal/repo"
	"github.com/boostmart/boostmart/internal/service/authservice"
	"github.com/boostmart/boostmart/internal/service/balanceservice"
	"github.com/boostmart/boostmart/internal/service/orderservice"
	"github.com/boostmart/boostmart/internal/service/userservice"
	pkgauth "github.com/boostmart/boostmart/pkg/auth"
)

type Services struct {
	AuthService    *authservice.Service
	UserService    *userservice.Service
	OrderService   *orderservice.Service
	BalanceService *balanceservice.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager, jwtService pkgauth.JWTServiceInterface, sinks ...orderservice.EventSink) *Services {
	balanceService := balanceservice.New(repo.BalanceRepo)
	orderService := orderservice.New(repo.OrderRepo, repo.MessageRepo, repo.UserRepo, balanceService, txManager, sinks...)
	authService := authservice.New(repo.UserRepo, &pkgauth.HashService{}, jwtService)
	userService := userservice.New(repo.UserRepo)

	return &Services{
		AuthService:    authService,
		UserService:    userService,
		OrderService:   orderService,
		BalanceService: balanceService,
	}
}
