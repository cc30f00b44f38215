package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonnatanMerchan/LoanManagement/internal/domain/loan"
	"github.com/jonnatanMerchan/LoanManagement/internal/infrastructure/monitoring"
)

// knownStatuses is the full set of gauge labels, so statuses that drop to
// zero loans are reset instead of keeping a stale value.
var knownStatuses = []loan.Status{
	loan.StatusPending,
	loan.StatusApproved,
	loan.StatusRejected,
	loan.StatusActive,
	loan.StatusComplete,
	loan.StatusCancelled,
}

// PortfolioMetricsJob refreshes the loans-by-status gauge. Read-only: it
// never mutates loan or payment state.
type PortfolioMetricsJob struct {
	loanRepo loan.Repository
	logger   *slog.Logger
}

func NewPortfolioMetricsJob(loanRepo loan.Repository, logger *slog.Logger) *PortfolioMetricsJob {
	if loanRepo == nil || logger == nil {
		panic("PortfolioMetricsJob dependencies cannot be nil")
	}
	return &PortfolioMetricsJob{
		loanRepo: loanRepo,
		logger:   logger.With("job", "PortfolioMetrics"),
	}
}

func (j *PortfolioMetricsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Refreshing loan portfolio metrics.")

	counts, err := j.loanRepo.CountLoansByStatus(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count loans by status, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot refresh portfolio metrics: %w", err)
	}

	for _, status := range knownStatuses {
		monitoring.SetLoansByStatus(string(status), counts[status])
	}

	j.logger.InfoContext(ctx, "Loan portfolio metrics refreshed.",
		slog.Int("statuses", len(counts)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
