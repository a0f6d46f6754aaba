package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notat/internal/domain"
)

// Options are the reminder toggles that apply to every appointment, on
// top of any per-appointment custom reminder.
type Options struct {
	DayBeforeAtNine bool
	HourBefore      bool
}

// Scheduler issues and cancels alerts for appointments through a Center.
// Every failure is swallowed after logging: the in-memory appointment is
// authoritative and a missed alert is recoverable on the next update or
// restart.
type Scheduler struct {
	center Center
	log    *zap.Logger
	now    func() time.Time
}

func NewScheduler(center Center, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		center: center,
		log:    log.With(zap.String("component", "notify")),
		now:    time.Now,
	}
}

// Schedule plans and issues the alerts for item. Authorization is asked
// for first; a denial skips scheduling without error.
func (s *Scheduler) Schedule(ctx context.Context, item domain.Termin, opts Options) {
	granted, err := s.center.RequestAuthorization(ctx)
	if err != nil {
		s.log.Warn("notification authorization failed", zap.Error(err))
		return
	}
	if !granted {
		s.log.Debug("notification authorization denied")
		return
	}

	for _, req := range Plan(item, opts.DayBeforeAtNine, opts.HourBefore, s.now()) {
		if err := s.center.Schedule(ctx, req); err != nil {
			s.log.Warn("alert schedule failed",
				zap.String("alert_id", req.ID),
				zap.Time("fire_at", req.FireAt),
				zap.Error(err))
		}
	}
}

// Cancel removes every alert the appointment owns, pending or delivered.
func (s *Scheduler) Cancel(ctx context.Context, id uuid.UUID) {
	ids := make([]string, 0, len(Kinds))
	for _, kind := range Kinds {
		ids = append(ids, Identifier(id, kind))
	}
	if err := s.center.Cancel(ctx, ids...); err != nil {
		s.log.Warn("alert cancel failed", zap.String("termin_id", id.String()), zap.Error(err))
	}
}
