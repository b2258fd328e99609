package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/cache"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	adminEmailsKey       = "notify:inventory_admin_emails"
	defaultUnreadLimit   = 50
	emailFanOutLimit     = 5
	stockScanConcurrency = 4
)

// EmailSender delivers one HTML email. Implementations report success and log
// their own failures; a failed send never fails the caller.
type EmailSender interface {
	SendNotificationEmail(ctx context.Context, to, subject, html string) bool
}

// NotificationService derives stock alerts from a variant's current quantity.
// It also implements StockWatcher so writers can hand it committed changes.
type NotificationService interface {
	StockWatcher
	ProcessVariant(ctx context.Context, variantID uuid.UUID) error
	CheckAllStockLevels(ctx context.Context) (int, error)
	ListUnread(ctx context.Context, limit int) ([]dto.StockNotificationResponse, error)
	MarkAsRead(ctx context.Context, id, adminID uuid.UUID) error
	Stats(ctx context.Context) ([]dto.NotificationStat, error)
}

// NotificationConfig carries the tunables read from config.Config.
type NotificationConfig struct {
	DefaultThreshold int
	RecipientTTL     time.Duration
}

type notificationService struct {
	variants repository.VariantRepository
	notes    repository.StockNotificationRepository
	admins   repository.AdminRepository
	cache    cache.Store
	mailer   EmailSender
	cfg      NotificationConfig
	now      func() time.Time
}

func NewNotificationService(
	variants repository.VariantRepository,
	notes repository.StockNotificationRepository,
	admins repository.AdminRepository,
	store cache.Store,
	mailer EmailSender,
	cfg NotificationConfig,
) NotificationService {
	if cfg.DefaultThreshold <= 0 {
		cfg.DefaultThreshold = 10
	}
	if cfg.RecipientTTL <= 0 {
		cfg.RecipientTTL = 5 * time.Minute
	}
	return &notificationService{
		variants: variants,
		notes:    notes,
		admins:   admins,
		cache:    store,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// VariantsChanged processes each variant in turn and only logs failures.
func (s *notificationService) VariantsChanged(ctx context.Context, ids []uuid.UUID) {
	for _, id := range ids {
		if err := s.ProcessVariant(ctx, id); err != nil {
			log.Error().Err(err).Str("variant_id", id.String()).Msg("notifications: process variant failed")
		}
	}
}

// ── ProcessVariant ────────────────────────────────────────────────────────────
//   qty > threshold  → resolve open low/out alerts; one "restocked" if any resolved
//   qty == 0         → out_of_stock
//   otherwise        → low_stock

func (s *notificationService) ProcessVariant(ctx context.Context, variantID uuid.UUID) error {
	v, err := s.variants.FindWithProduct(ctx, variantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	threshold := v.EffectiveThreshold(s.cfg.DefaultThreshold)
	switch {
	case v.Quantity > threshold:
		return s.resolveIfHealthy(ctx, v)
	case v.Quantity <= 0:
		return s.createOnce(ctx, v, model.NotifyOutOfStock, "Out of stock: "+v.DisplayName(), threshold)
	default:
		return s.createOnce(ctx, v, model.NotifyLowStock, "Low stock: "+v.DisplayName(), threshold)
	}
}

func (s *notificationService) resolveIfHealthy(ctx context.Context, v *model.Variant) error {
	resolved, err := s.notes.ResolveUnread(ctx, v.ID,
		[]string{model.NotifyLowStock, model.NotifyOutOfStock}, s.now())
	if err != nil {
		return err
	}
	if resolved == 0 {
		return nil
	}
	return s.createOnce(ctx, v, model.NotifyRestocked, "Restocked: "+v.DisplayName(), 0)
}

// createOnce inserts an unread notification of kind unless one is already open,
// then emails the inventory admins. A concurrent insert that loses on the
// partial unique index counts as already open.
func (s *notificationService) createOnce(ctx context.Context, v *model.Variant, kind, message string, threshold int) error {
	open, err := s.notes.HasUnread(ctx, v.ID, kind)
	if err != nil {
		return err
	}
	if open {
		return nil
	}

	created, err := s.notes.Create(ctx, &model.StockNotification{
		VariantID:        v.ID,
		NotificationType: kind,
		Message:          message,
	})
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	subject, html := renderStockEmail(kind, v, threshold)
	s.emailAdmins(ctx, v, subject, html)
	return nil
}

func (s *notificationService) emailAdmins(ctx context.Context, v *model.Variant, subject, html string) {
	if s.mailer == nil {
		return
	}
	recipients := s.recipients(ctx)
	if len(recipients) == 0 {
		log.Warn().Str("sku", v.SKU).Msg("notifications: no inventory admins to notify")
		return
	}

	var sent atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(emailFanOutLimit)
	for _, to := range recipients {
		to := to
		g.Go(func() error {
			if s.mailer.SendNotificationEmail(gctx, to, subject, html) {
				sent.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Str("sku", v.SKU).
		Int32("sent", sent.Load()).
		Int("recipients", len(recipients)).
		Msg("notifications: stock email dispatched")
}

// recipients returns the emails of admins allowed to see inventory, cached
// for RecipientTTL. Lookup failures yield an empty list.
func (s *notificationService) recipients(ctx context.Context) []string {
	var emails []string
	if s.cache != nil {
		err := s.cache.Get(ctx, adminEmailsKey, &emails)
		if err == nil {
			return emails
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("notifications: recipient cache read failed")
		}
	}

	admins, err := s.admins.ListWithRoles(ctx)
	if err != nil {
		log.Error().Err(err).Msg("notifications: load admin recipients")
		return nil
	}
	emails = make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Role.CanSeeInventory() {
			emails = append(emails, a.Email)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, adminEmailsKey, emails, s.cfg.RecipientTTL); err != nil {
			log.Warn().Err(err).Msg("notifications: recipient cache write failed")
		}
	}
	return emails
}

// ── CheckAllStockLevels ───────────────────────────────────────────────────────

// CheckAllStockLevels processes every active variant and returns how many were
// scanned. Per-variant failures are logged and skipped.
func (s *notificationService) CheckAllStockLevels(ctx context.Context) (int, error) {
	ids, err := s.variants.ListActiveIDs(ctx)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stockScanConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.ProcessVariant(gctx, id); err != nil {
				log.Error().Err(err).Str("variant_id", id.String()).Msg("notifications: stock scan")
			}
			return nil
		})
	}
	_ = g.Wait()
	return len(ids), nil
}

// ── Inbox ─────────────────────────────────────────────────────────────────────

func (s *notificationService) ListUnread(ctx context.Context, limit int) ([]dto.StockNotificationResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultUnreadLimit
	}
	rows, err := s.notes.ListUnread(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockNotificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, notificationToResponse(&rows[i]))
	}
	return out, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, adminID uuid.UUID) error {
	n, err := s.notes.MarkRead(ctx, id, adminID, s.now())
	if err != nil {
		return err
	}
	if n == 0 {
		return apierror.NotFound("Notification not found")
	}
	return nil
}

func (s *notificationService) Stats(ctx context.Context) ([]dto.NotificationStat, error) {
	stats, err := s.notes.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []dto.NotificationStat{}
	}
	return stats, nil
}

func notificationToResponse(n *model.StockNotification) dto.StockNotificationResponse {
	r := dto.StockNotificationResponse{
		ID:               n.ID.String(),
		VariantID:        n.VariantID.String(),
		NotificationType: n.NotificationType,
		Message:          n.Message,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		at := n.ReadAt.Format(time.RFC3339)
		r.ReadAt = &at
	}
	if v := n.Variant; v != nil {
		r.SKU = v.SKU
		if v.Product != nil {
			r.ProductName = v.Product.Name
		}
	}
	return r
}
