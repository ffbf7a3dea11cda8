package emergency

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/metrics"
	"github.com/guji3/ping/pkg/notification"
)

const smsMessageTemplate = `[EMERGENCY SOS] An emergency signal from %s has been triggered!

Location: %s
Map: https://maps.google.com/?q=%s,%s
Situation: %s
Contact: %s

Please check immediately and contact emergency services (112 / 119)!`

// SMSNotifier fans one alert out to every contact concurrently. Each
// delivery is an independent single attempt; there are no retries, to avoid
// duplicate alerts.
type SMSNotifier struct {
	sender      notification.SMSSender
	maxParallel int
	sendTimeout time.Duration
	log         *zap.SugaredLogger
}

func NewSMSNotifier(sender notification.SMSSender, log *zap.SugaredLogger) *SMSNotifier {
	return &SMSNotifier{
		sender:      sender,
		maxParallel: models.MaxContactsPerUser,
		sendTimeout: 5 * time.Second,
		log:         log,
	}
}

// Dispatch sends the alert to all contacts and returns delivery status per
// phone number. It always waits for every attempt; one failure neither
// aborts nor retries the others.
func (n *SMSNotifier) Dispatch(ctx context.Context, contacts []models.EmergencyContact,
	userName string, lat, lon float64, address, situation string) map[string]bool {

	type outcome struct {
		phone     string
		delivered bool
	}
	results := make(chan outcome, len(contacts))

	var g errgroup.Group
	g.SetLimit(n.maxParallel)
	for _, contact := range contacts {
		c := contact
		g.Go(func() error {
			msg := n.composeMessage(userName, lat, lon, address, situation, c.Phone)

			sctx, cancel := context.WithTimeout(ctx, n.sendTimeout)
			err := n.sender.Send(sctx, c.Phone, msg)
			cancel()

			if err != nil {
				n.log.Errorw("sms dispatch failed", "contact", c.Name, "phone", c.Phone, "err", err)
				metrics.SMSSentTotal.WithLabelValues("failed").Inc()
			} else {
				n.log.Infow("sms dispatched", "contact", c.Name, "phone", c.Phone)
				metrics.SMSSentTotal.WithLabelValues("delivered").Inc()
			}
			results <- outcome{phone: c.Phone, delivered: err == nil}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	delivered := make(map[string]bool, len(contacts))
	for r := range results {
		delivered[r.phone] = r.delivered
	}

	ok := 0
	for _, d := range delivered {
		if d {
			ok++
		}
	}
	n.log.Infow("sms fan-out complete", "delivered", ok, "total", len(contacts))
	return delivered
}

func (n *SMSNotifier) composeMessage(userName string, lat, lon float64, address, situation, phone string) string {
	if situation == "" {
		situation = "unknown"
	}
	return fmt.Sprintf(smsMessageTemplate, userName, address, formatCoord(lat), formatCoord(lon), situation, phone)
}
