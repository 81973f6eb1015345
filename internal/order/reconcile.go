package order

import (
	"context"
	"sync/atomic"
	"time"

	"spalena53-be/internal/delivery"
	"spalena53-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultReconcileInterval = time.Minute
	reconcileMinAge          = 30 * time.Second
	reconcileBatchSize       = 50
	reconcileWorkers         = 4
)

// ShipmentRegistrar is satisfied by Service.
type ShipmentRegistrar interface {
	RegisterShipment(ctx context.Context, o *Order) (*delivery.Shipment, error)
}

// Reconciler retries shipment registration for committed orders that
// still have no tracking number.
type Reconciler struct {
	repo      Repository
	registrar ShipmentRegistrar
	interval  time.Duration
	minAge    time.Duration
	batchSize int
	workers   int
	now       func() time.Time
}

func NewReconciler(repo Repository, registrar ShipmentRegistrar, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{
		repo:      repo,
		registrar: registrar,
		interval:  interval,
		minAge:    reconcileMinAge,
		batchSize: reconcileBatchSize,
		workers:   reconcileWorkers,
		now:       time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(zap.String("component", "reconciler"))
	log.Info("shipment reconciler started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shipment reconciler stopped")
			return nil
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil {
				log.Error("reconcile pass failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("shipments registered", zap.Int("count", n))
			}
		}
	}
}

// RunOnce handles one batch and returns how many shipments were registered.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	orders, err := r.repo.ListPendingShipment(ctx, r.now().Add(-r.minAge), r.batchSize)
	if err != nil {
		return 0, err
	}

	var registered atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, o := range orders {
		o := o
		g.Go(func() error {
			if _, err := r.registrar.RegisterShipment(gctx, o); err != nil {
				logger.FromCtx(gctx).Warn("shipment still pending",
					zap.String("order_id", o.ID.String()),
					zap.Error(err),
				)
				return nil
			}
			registered.Add(1)
			return nil
		})
	}

	err = g.Wait()
	return int(registered.Load()), err
}
