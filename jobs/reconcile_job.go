package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/course_marketplace/services"
	"github.com/robfig/cron/v3"
)

const reconcileBatchSize = 100

// Reconciler retries purchase projections left pending after capture.
type Reconciler interface {
	Reconcile(ctx context.Context, limit int) (services.ReconcileResult, error)
}

// ReconcilePurchases runs one reconciliation pass.
func ReconcilePurchases(ctx context.Context, r Reconciler) {
	ctx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()

	result, err := r.Reconcile(ctx, reconcileBatchSize)
	if err != nil {
		log.Printf("🔥 Error reconciling purchases: %v", err)
		return
	}
	if result.Scanned == 0 {
		return
	}
	log.Printf("✅ Reconciled purchases: %d applied, %d still failing", result.Applied, result.Failed)
}

// Schedule registers ReconcilePurchases on c for the cron expression.
func Schedule(c *cron.Cron, expr string, r Reconciler) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		ReconcilePurchases(context.Background(), r)
	})
}
