// Package janitor sweeps stale pending orders: boosts nobody claimed within
// the configured TTL are cancelled and the customer refunded.
package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/boostmart/boostmart/internal/config"
	"github.com/boostmart/boostmart/internal/domain"
	"github.com/boostmart/boostmart/pkg/workerpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Repo interface {
	FindStalePending(ctx context.Context, before time.Time, limit uint32) ([]domain.Order, error)
}

type Expirer interface {
	Expire(ctx context.Context, orderID int) error
}

var expiringOrders sync.Map

type Service struct {
	repo       Repo
	expirer    Expirer
	ttl        time.Duration
	interval   time.Duration
	limit      uint32
	workerPool workerpool.WorkerPoolI
}

func New(cfg *config.Config, repo Repo, expirer Expirer) *Service {
	return &Service{
		repo:       repo,
		expirer:    expirer,
		ttl:        cfg.PendingTTL,
		interval:   cfg.SweepInterval,
		limit:      1000,
		workerPool: workerpool.NewWorkerPool(10),
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("janitor started",
		zap.Duration("ttl", s.ttl), zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping janitor")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep expires every stale pending order found in this pass. Orders already
// being expired by an earlier pass are skipped.
func (s *Service) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.ttl)
	orders, err := s.repo.FindStalePending(ctx, cutoff, s.limit)
	if err != nil {
		zap.L().Error("failed to fetch stale orders", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, order := range orders {
		order := order

		if _, loaded := expiringOrders.LoadOrStore(order.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer expiringOrders.Delete(order.ID)
				return s.expirer.Expire(ctx, order.ID)
			})
			if err != nil {
				expiringOrders.Delete(order.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("error expiring orders", zap.Error(err))
	}
}
