package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/metrics"
	"github.com/merchlab/ordersync/internal/notification/domain"
	"github.com/merchlab/ordersync/internal/providers/email"
	"github.com/merchlab/ordersync/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Email  email.Provider
	Clock  clock.Clock
	Config config.Config
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	email      email.Provider
	clock      clock.Clock
	recipients []string
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("notification.dispatcher"),
		genID:      p.GenID,
		repo:       p.Repo,
		email:      p.Email,
		clock:      p.Clock,
		recipients: p.Config.Email.AlertTo,
	}
}

// NotifyStuck sends one alert for each stuck order not already alerted
// today. Sends happen before the log insert, so a failed send is retried on
// the next run; the rare duplicate from a failed insert after a successful
// send is accepted in favour of never missing an alert.
func (s *Service) NotifyStuck(ctx context.Context, alerts []domain.StuckAlert) {
	if len(alerts) == 0 {
		return
	}

	today := s.clock.Now().UTC().Format("2006-01-02")

	notified, err := s.repo.ListNotifiedOrders(ctx, s.db, today)
	if err != nil {
		s.log.Error("failed to read notification log, skipping alerts", zap.Error(err))
		metrics.AlertFailuresTotal.Inc()
		return
	}
	seen := make(map[string]struct{}, len(notified))
	for _, orderID := range notified {
		seen[orderID] = struct{}{}
	}

	for _, alert := range alerts {
		if _, ok := seen[alert.OrderID]; ok {
			continue
		}

		if err := s.send(ctx, alert); err != nil {
			s.log.Error("failed to send stuck-order alert",
				zap.String("order_id", alert.OrderID),
				zap.Error(err),
			)
			metrics.AlertFailuresTotal.Inc()
			continue
		}

		entry := &domain.NotificationLogEntry{
			ID:           s.genID.Generate(),
			OrderID:      alert.OrderID,
			NotifiedDate: today,
			CreatedAt:    s.clock.Now(),
		}
		if err := s.repo.Insert(ctx, s.db, entry); err != nil {
			if db.IsDuplicateKeyErr(err) {
				// A concurrent run logged it first; the order already
				// got its alert for today.
				continue
			}
			s.log.Error("alert sent but log insert failed, duplicate possible tomorrow",
				zap.String("order_id", alert.OrderID),
				zap.Error(err),
			)
			metrics.AlertFailuresTotal.Inc()
			continue
		}

		metrics.AlertsSentTotal.Inc()
		s.log.Info("stuck-order alert sent",
			zap.String("order_id", alert.OrderID),
			zap.String("stage", alert.Stage),
			zap.String("status_date", alert.StatusDate),
		)
	}
}

func (s *Service) send(ctx context.Context, alert domain.StuckAlert) error {
	if len(s.recipients) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}

	subject := fmt.Sprintf("Order %s stuck at %q", alert.OrderID, alert.Stage)
	var body strings.Builder
	body.WriteString("<p>The following order has not progressed for more than the configured threshold:</p><ul>")
	body.WriteString(fmt.Sprintf("<li>Order: %s</li>", alert.OrderID))
	body.WriteString(fmt.Sprintf("<li>Stage: %s</li>", alert.Stage))
	body.WriteString(fmt.Sprintf("<li>Last movement: %s</li>", alert.StatusDate))
	body.WriteString(fmt.Sprintf("<li>Customer reference: %s</li>", alert.CustomerRef))
	body.WriteString(fmt.Sprintf("<li>Ordered: %s</li>", alert.OrderDate))
	body.WriteString("</ul>")

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return s.email.Send(sendCtx, s.recipients, subject, body.String())
}
