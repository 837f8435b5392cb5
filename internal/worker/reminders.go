package worker

import (
	"context"
	"strings"
	"time"

	"randevulu/internal/changes"
	"randevulu/internal/metrics"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"

	"go.uber.org/zap"
)

type Notifier interface {
	Create(ctx context.Context, input validate.NotificationInput) (models.Notification, changes.Set, error)
}

type ReminderConfig struct {
	Lead      time.Duration
	BatchSize int
	Lang      string
	Location  *time.Location
	Now       func() time.Time
}

type Reminders struct {
	store    store.ReminderStore
	notifier Notifier
	logger   *zap.Logger
	lead     time.Duration
	batch    int
	lang     string
	loc      *time.Location
	now      func() time.Time
}

func NewReminders(st store.ReminderStore, notifier Notifier, logger *zap.Logger, cfg ReminderConfig) *Reminders {
	if cfg.Lead <= 0 {
		cfg.Lead = 2 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reminders{
		store:    st,
		notifier: notifier,
		logger:   logger,
		lead:     cfg.Lead,
		batch:    cfg.BatchSize,
		lang:     cfg.Lang,
		loc:      cfg.Location,
		now:      cfg.Now,
	}
}

// Run reminds the creators of confirmed appointments starting within the
// lead time. Each appointment is recorded before the notification is written,
// so a reminder is never sent twice.
func (r *Reminders) Run(ctx context.Context) error {
	now := r.now()
	due, err := r.store.ListDueReminders(ctx, now, now.Add(r.lead), r.batch)
	if err != nil {
		return err
	}

	for _, candidate := range due {
		recorded, err := r.store.RecordReminder(ctx, candidate.AppointmentID, now)
		if err != nil {
			return err
		}
		if !recorded {
			continue
		}

		templateID := reminderTemplate
		if strings.TrimSpace(candidate.ServiceName) == "" {
			templateID = reminderTemplateNoService
		}
		start := candidate.StartTime.In(r.loc)
		message := renderTemplate(defaultTemplate(templateID, r.lang), map[string]string{
			"tenant":  candidate.TenantName,
			"date":    start.Format("02.01.2006"),
			"time":    start.Format("15:04"),
			"service": candidate.ServiceName,
		})

		if _, _, err := r.notifier.Create(ctx, validate.NotificationInput{
			UserID:               candidate.CreatedBy,
			Type:                 models.NotificationAppointmentReminder,
			Title:                defaultTitle(r.lang),
			Message:              message,
			RelatedAppointmentID: candidate.AppointmentID,
		}); err != nil {
			metrics.SideEffectFailuresTotal.WithLabelValues("reminder_notification").Inc()
			r.logger.Error("reminder dispatch failed",
				zap.String("appointment_id", candidate.AppointmentID),
				zap.String("user_id", candidate.CreatedBy),
				zap.Error(err))
			continue
		}
		metrics.RemindersSentTotal.Inc()
	}
	return nil
}
