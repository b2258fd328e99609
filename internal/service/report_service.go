package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/infra"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// ReportWriter renders a report into dir/name and returns the written path.
type ReportWriter func(report *dto.SalesReport, dir, name string) (string, error)

// ReportService builds sales reports. Short periods are computed inline;
// year and custom ranges, and any file format, are queued as a Report row.
type ReportService interface {
	BuildSalesReport(ctx context.Context, actor uuid.UUID, q dto.SalesReportQuery) (*dto.SalesReportResult, error)
	ReportStatus(ctx context.Context, id uuid.UUID) (*dto.ReportStatusResponse, error)
	// DownloadReport returns the file path and format of a completed report.
	DownloadReport(ctx context.Context, id uuid.UUID) (string, string, error)
	// ProcessPending claims up to limit queued reports and generates them.
	ProcessPending(ctx context.Context, limit int) (int, error)
}

type reportService struct {
	reports    repository.ReportRepository
	storageDir string
	writers    map[string]ReportWriter
	now        func() time.Time
}

func NewReportService(reports repository.ReportRepository, storageDir string) ReportService {
	return &reportService{
		reports:    reports,
		storageDir: storageDir,
		writers: map[string]ReportWriter{
			"json": writeReportJSON,
			"pdf":  infra.WriteSalesReportPDF,
			"xlsx": infra.WriteSalesReportXLSX,
		},
		now: time.Now,
	}
}

func normalizeReportQuery(q *dto.SalesReportQuery) {
	if q.Format == "" {
		q.Format = "json"
	}
	if !q.Summary && !q.PaymentMethods && !q.ProductBreakdown {
		q.Summary = true
	}
}

func isQueued(q dto.SalesReportQuery) bool {
	return q.Period == "year" || q.Period == "custom" || q.Format != "json"
}

// ── BuildSalesReport ──────────────────────────────────────────────────────────

func (s *reportService) BuildSalesReport(ctx context.Context, actor uuid.UUID, q dto.SalesReportQuery) (*dto.SalesReportResult, error) {
	normalizeReportQuery(&q)
	// Resolve now so bad params fail the request instead of the job.
	if _, _, err := periodRange(q.Period, q.StartDate, q.EndDate, s.now()); err != nil {
		return nil, err
	}
	if _, err := cashierFilter(q.Cashier); err != nil {
		return nil, err
	}

	if isQueued(q) {
		params, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		rpt := &model.Report{
			ID:        uuid.New(),
			CreatedBy: &actor,
			Params:    datatypes.JSON(params),
			Format:    q.Format,
			Status:    model.ReportPending,
		}
		if err := s.reports.Create(ctx, rpt); err != nil {
			return nil, err
		}
		log.Info().Str("report_id", rpt.ID.String()).Str("period", q.Period).Msg("report: queued")
		return &dto.SalesReportResult{Queued: true, ReportID: rpt.ID.String()}, nil
	}

	report, err := s.generate(ctx, q, s.now())
	if err != nil {
		return nil, err
	}
	return &dto.SalesReportResult{Report: report}, nil
}

func cashierFilter(raw string) (*uuid.UUID, error) {
	if raw == "" || raw == "all" {
		return nil, nil
	}
	id, err := parseID(raw, "cashier")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// generate runs the aggregation queries for q with periods resolved against now.
func (s *reportService) generate(ctx context.Context, q dto.SalesReportQuery, now time.Time) (*dto.SalesReport, error) {
	from, to, err := periodRange(q.Period, q.StartDate, q.EndDate, now)
	if err != nil {
		return nil, err
	}
	adminID, err := cashierFilter(q.Cashier)
	if err != nil {
		return nil, err
	}
	w := repository.SalesWindow{From: from, To: to, AdminID: adminID}

	cashier := q.Cashier
	if cashier == "" {
		cashier = "all"
	}
	report := &dto.SalesReport{Meta: dto.ReportMeta{
		Period:      q.Period,
		StartDate:   from.Format(dateLayout),
		EndDate:     to.Format(dateLayout),
		Cashier:     cashier,
		GeneratedAt: s.now().Format(time.RFC3339),
	}}

	if q.Summary {
		sum, err := s.reports.SalesSummary(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("sales summary: %w", err)
		}
		sum.GrossProfit = round2(sum.TotalSales.Sub(sum.TotalCOGS))
		report.Summary = sum
	}
	if q.PaymentMethods {
		pm, err := s.reports.PaymentMethodTotals(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("payment method totals: %w", err)
		}
		report.PaymentMethods = pm
	}
	if q.ProductBreakdown {
		lines, err := s.reports.ProductBreakdown(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("product breakdown: %w", err)
		}
		for i := range lines {
			lines[i].Revenue = round2(lines[i].Revenue)
			lines[i].COGS = round2(lines[i].COGS)
		}
		report.ProductBreakdown = lines
	}
	return report, nil
}

// ── Status / download ─────────────────────────────────────────────────────────

func (s *reportService) ReportStatus(ctx context.Context, id uuid.UUID) (*dto.ReportStatusResponse, error) {
	rpt, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Report not found")
	}
	resp := &dto.ReportStatusResponse{
		ReportID:              rpt.ID.String(),
		Status:                rpt.Status,
		Format:                rpt.Format,
		CreatedAt:             rpt.CreatedAt.Format(time.RFC3339),
		ProcessingStartedAt:   formatTime(rpt.ProcessingStartedAt),
		ProcessingCompletedAt: formatTime(rpt.ProcessingCompletedAt),
		Error:                 rpt.Error,
	}
	if rpt.Status == model.ReportCompleted {
		url := "/v1/reports/" + rpt.ID.String() + "/download"
		resp.DownloadURL = &url
	}
	return resp, nil
}

func (s *reportService) DownloadReport(ctx context.Context, id uuid.UUID) (string, string, error) {
	rpt, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return "", "", notFoundOr(err, "Report not found")
	}
	if rpt.Status != model.ReportCompleted || rpt.ResultPath == nil {
		return "", "", apierror.Invalid("Report not ready")
	}
	return *rpt.ResultPath, rpt.Format, nil
}

// ── ProcessPending ────────────────────────────────────────────────────────────

func (s *reportService) ProcessPending(ctx context.Context, limit int) (int, error) {
	claimed, err := s.reports.ClaimPending(ctx, limit, s.now())
	if err != nil {
		return 0, err
	}
	for i := range claimed {
		rpt := &claimed[i]
		path, err := s.process(ctx, rpt)
		if err != nil {
			log.Error().Err(err).Str("report_id", rpt.ID.String()).Msg("report: generation failed")
			if ferr := s.reports.Fail(ctx, rpt.ID, err.Error(), s.now()); ferr != nil {
				log.Error().Err(ferr).Str("report_id", rpt.ID.String()).Msg("report: mark failed")
			}
			continue
		}
		if err := s.reports.Complete(ctx, rpt.ID, path, s.now()); err != nil {
			log.Error().Err(err).Str("report_id", rpt.ID.String()).Msg("report: mark completed")
			continue
		}
		log.Info().Str("report_id", rpt.ID.String()).Str("path", path).Msg("report: completed")
	}
	return len(claimed), nil
}

func (s *reportService) process(ctx context.Context, rpt *model.Report) (string, error) {
	var q dto.SalesReportQuery
	if err := json.Unmarshal(rpt.Params, &q); err != nil {
		return "", fmt.Errorf("decode params: %w", err)
	}
	normalizeReportQuery(&q)

	write, ok := s.writers[rpt.Format]
	if !ok {
		return "", fmt.Errorf("unsupported format %q", rpt.Format)
	}
	report, err := s.generate(ctx, q, rpt.CreatedAt)
	if err != nil {
		return "", err
	}
	return write(report, s.storageDir, fmt.Sprintf("sales_%s.%s", rpt.ID, rpt.Format))
}

func writeReportJSON(report *dto.SalesReport, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("json: create storage dir: %w", err)
	}
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("json: write file: %w", err)
	}
	return path, nil
}
