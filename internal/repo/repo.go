package repo

import (
	"github.com/boostmart/boostmart/internal/pg"
	balancerepo "github.com/boostmart/boostmart/internal/repo/balance-repo"
	messagerepo "github.com/boostmart/boostmart/internal/repo/message-repo"
	orderrepo "github.com/boostmart/boostmart/internal/repo/order-repo"
	userrepo "github.com/boostmart/boostmart/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo    *userrepo.Repository
	OrderRepo   *orderrepo.Repository
	BalanceRepo *balancerepo.Repository
	MessageRepo *messagerepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:    userrepo.New(conn),
		OrderRepo:   orderrepo.New(conn),
		BalanceRepo: balancerepo.New(conn),
		MessageRepo: messagerepo.New(conn),
	}
}
