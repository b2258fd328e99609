package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StockScanner re-checks every active variant (service.NotificationService).
type StockScanner interface {
	CheckAllStockLevels(ctx context.Context) (int, error)
}

// ReportProcessor generates queued reports (service.ReportService).
type ReportProcessor interface {
	ProcessPending(ctx context.Context, limit int) (int, error)
}

// OverdueMarker flags late installments (service.InstallmentService).
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// StockScanTask runs at startup and then every interval.
func StockScanTask(s StockScanner, interval time.Duration) Task {
	return Task{
		Name:       "stock_scan",
		Interval:   interval,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			n, err := s.CheckAllStockLevels(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("variants", n).Msg("stock_scan: completed")
			return nil
		},
	}
}

// ReportTask claims up to batch pending reports per tick.
func ReportTask(p ReportProcessor, interval time.Duration, batch int) Task {
	return Task{
		Name:     "report_processor",
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := p.ProcessPending(ctx, batch)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info().Int("reports", n).Msg("report_processor: batch processed")
			}
			return nil
		},
	}
}

func OverdueTask(m OverdueMarker, interval time.Duration) Task {
	return Task{
		Name:       "installment_overdue",
		Interval:   interval,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			n, err := m.MarkOverdue(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info().Int64("installments", n).Msg("installment_overdue: marked late")
			}
			return nil
		},
	}
}
