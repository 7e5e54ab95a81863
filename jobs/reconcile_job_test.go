package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/anjiri1684/course_marketplace/services"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReconciler struct {
	calls  int
	limit  int
	result services.ReconcileResult
	err    error
}

func (c *countingReconciler) Reconcile(ctx context.Context, limit int) (services.ReconcileResult, error) {
	c.calls++
	c.limit = limit
	if _, ok := ctx.Deadline(); !ok {
		return services.ReconcileResult{}, errors.New("missing deadline")
	}
	return c.result, c.err
}

func TestReconcilePurchasesUsesBatchWithDeadline(t *testing.T) {
	r := &countingReconciler{result: services.ReconcileResult{Scanned: 3, Applied: 2, Failed: 1}}

	ReconcilePurchases(context.Background(), r)

	assert.Equal(t, 1, r.calls)
	assert.Equal(t, reconcileBatchSize, r.limit)
}

func TestReconcilePurchasesSurvivesErrors(t *testing.T) {
	r := &countingReconciler{err: errors.New("database is locked")}
	assert.NotPanics(t, func() { ReconcilePurchases(context.Background(), r) })
}

func TestScheduleRejectsInvalidExpression(t *testing.T) {
	c := cron.New()
	_, err := Schedule(c, "not a schedule", &countingReconciler{})
	assert.Error(t, err)

	id, err := Schedule(c, "*/1 * * * *", &countingReconciler{})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, c.Entries(), 1)
}
