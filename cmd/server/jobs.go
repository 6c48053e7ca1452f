package main

import (
	"context"
	"fmt"
	"time"

	financeapp "github.com/grocer/backend/internal/application/finance"
	"github.com/grocer/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// maxExpiryBatches bounds one coupon expiry run
const maxExpiryBatches = 100

// defaultExpiryBatchSize replaces a non-positive batch size
const defaultExpiryBatchSize = 200

type couponExpirer interface {
	ExpireDue(ctx context.Context, now time.Time, batchSize int) (int, error)
}

type summaryGenerator interface {
	GenerateMonthly(ctx context.Context, now time.Time) (financeapp.MonthlyRunResult, error)
}

// couponExpiryJob expires due coupons batch by batch until a short batch
// shows nothing is left
func couponExpiryJob(coupons couponExpirer, batchSize int, now func() time.Time, logger *zap.Logger) scheduler.JobExecutor {
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	return scheduler.JobExecutorFunc(func(ctx context.Context, job *scheduler.Job) error {
		total := 0
		for i := 0; i < maxExpiryBatches; i++ {
			n, err := coupons.ExpireDue(ctx, now(), batchSize)
			total += n
			if err != nil {
				return fmt.Errorf("expire coupons after %d: %w", total, err)
			}
			if n < batchSize {
				break
			}
		}
		logger.Debug("Coupon expiry run finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("expired", total),
		)
		return nil
	})
}

// gstSummaryJob generates last period's GST summaries. A run where some
// stores failed is reported as failed so the scheduler retries it; stores
// already generated are regenerated idempotently.
func gstSummaryJob(summaries summaryGenerator, now func() time.Time, logger *zap.Logger) scheduler.JobExecutor {
	return scheduler.JobExecutorFunc(func(ctx context.Context, job *scheduler.Job) error {
		result, err := summaries.GenerateMonthly(ctx, now())
		if err != nil {
			return err
		}
		logger.Info("GST summary run finished",
			zap.String("job_id", job.ID.String()),
			zap.String("period", result.Period),
			zap.Int("generated", result.Generated),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
		if result.Failed > 0 {
			return fmt.Errorf("gst summary %s: %d stores failed", result.Period, result.Failed)
		}
		return nil
	})
}
