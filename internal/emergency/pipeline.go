package emergency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/metrics"
)

// Pipeline orchestrates one SOS alert end to end:
//
//	resolve device -> load contacts -> transcribe+classify -> geocode
//	-> fan out notifications -> persist record -> assemble response
//
// Only four failures are fatal: an unregistered device, an empty contact
// list, a failed transcription, and a failed audit write. Classification,
// geocoding and individual SMS failures degrade locally so that AI or
// geocoding flakiness can never suppress the notification itself.
type Pipeline struct {
	resolver DeviceResolver
	contacts ContactSource
	analyzer Analyzer
	geocoder Geocoder
	notifier Notifier
	audit    AuditStore
	log      *zap.SugaredLogger
}

func NewPipeline(resolver DeviceResolver, contacts ContactSource, analyzer Analyzer,
	geocoder Geocoder, notifier Notifier, audit AuditStore, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		contacts: contacts,
		analyzer: analyzer,
		geocoder: geocoder,
		notifier: notifier,
		audit:    audit,
		log:      log,
	}
}

// Process handles one alert. Safe for concurrent use; all per-alert state
// is local.
func (p *Pipeline) Process(ctx context.Context, req AlertRequest) (*AlertResponse, error) {
	trace := uuid.NewString()[:8]
	log := p.log.With("alert", trace, "device", req.DeviceSerial)
	log.Infow("emergency signal received", "lat", req.Latitude, "lon", req.Longitude,
		"audioBytes", len(req.Audio))

	// stage 1: an unregistered device cannot trigger anything downstream
	user, err := timedStage("resolve_device", func() (*models.User, error) {
		return p.resolver.ResolveDevice(ctx, req.DeviceSerial)
	})
	if err != nil {
		// a DB hiccup is not an unregistered device
		if IsDeviceNotRegistered(err) {
			metrics.AlertsTotal.WithLabelValues(metrics.OutcomeDeviceNotRegistered).Inc()
		} else {
			metrics.AlertsTotal.WithLabelValues(metrics.OutcomeLookupFailed).Inc()
		}
		return nil, err
	}
	log.Infow("device resolved", "user", user.Name, "email", user.Email)

	// stage 2: with nobody to notify the alert carries no value
	contacts, err := timedStage("load_contacts", func() ([]models.EmergencyContact, error) {
		return p.contacts.ActiveContacts(ctx, user.ID)
	})
	if err != nil {
		metrics.AlertsTotal.WithLabelValues(metrics.OutcomeLookupFailed).Inc()
		return nil, err
	}
	if len(contacts) == 0 {
		metrics.AlertsTotal.WithLabelValues(metrics.OutcomeNoContacts).Inc()
		return nil, noContactsConfigured(user.ID)
	}
	log.Infow("contacts loaded", "count", len(contacts))

	// geocoding has no data dependency on the audio analysis, so it runs
	// alongside it
	addrCh := make(chan string, 1)
	go func() {
		start := time.Now()
		addrCh <- p.geocoder.ReverseGeocode(ctx, req.Latitude, req.Longitude)
		metrics.AlertStageDuration.WithLabelValues("geocode").Observe(time.Since(start).Seconds())
	}()

	var analysis *AnalysisResult
	if req.Test {
		// drill runs carry no audio; the fan-out and audit still happen
		analysis = &AnalysisResult{
			Situation:   "test alert",
			DangerLevel: models.DangerLow,
		}
		log.Infow("test alert, skipping audio analysis")
	} else {
		// stage 3a: no transcript, no pipeline value
		transcript, err := timedStage("transcribe", func() (string, error) {
			return p.analyzer.Transcribe(ctx, req.Audio, req.AudioName)
		})
		if err != nil {
			metrics.AlertsTotal.WithLabelValues(metrics.OutcomeTranscriptionFailed).Inc()
			return nil, err
		}

		// stage 3b: classification failure must never suppress the alert
		analysis, err = timedStage("classify", func() (*AnalysisResult, error) {
			return p.analyzer.Classify(ctx, transcript)
		})
		if err != nil {
			log.Warnw("classification failed, continuing with MEDIUM default", "err", err)
			analysis = &AnalysisResult{
				Transcript:  transcript,
				DangerLevel: models.DangerMedium,
			}
		}
		log.Infow("analysis complete", "situation", analysis.Situation, "dangerLevel", analysis.DangerLevel)
	}

	// stage 4: always yields an address, possibly the coordinate fallback
	address := <-addrCh
	log.Infow("location resolved", "address", address)

	// stage 5: concurrent fan-out, partial failure is recorded, not raised
	outcomes := p.notifier.Dispatch(ctx, contacts, user.Name,
		req.Latitude, req.Longitude, address, analysis.Situation)

	allSuccess := true
	sentTo := make([]models.SentContact, 0, len(contacts))
	for _, c := range contacts {
		sentTo = append(sentTo, models.SentContact{Name: c.Name, Phone: c.Phone})
		if !outcomes[c.Phone] {
			allSuccess = false
		}
	}

	// stage 6: the record must be written even when the caller has gone
	// away - contacts were already alerted, losing the trail is worse than
	// finishing late
	record := &models.EmergencyLog{
		UserID:              user.ID,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		LocationAddress:     address,
		AudioText:           analysis.Transcript,
		SituationAnalysis:   analysis.Analysis,
		DangerLevel:         analysis.DangerLevel,
		SentAt:              time.Now(),
		NotificationSuccess: allSuccess,
		DeviceSerial:        req.DeviceSerial,
	}
	if err := record.SetSentContacts(sentTo); err != nil {
		metrics.AlertsTotal.WithLabelValues(metrics.OutcomeAuditFailed).Inc()
		return nil, auditPersistFailed(err)
	}
	persistCtx := context.WithoutCancel(ctx)
	if err := p.audit.Insert(persistCtx, record); err != nil {
		// the most severe degradation: contacts were notified but no
		// durable trail exists
		log.Errorw("emergency record lost after dispatch", "err", err, "notified", len(sentTo))
		metrics.AlertsTotal.WithLabelValues(metrics.OutcomeAuditFailed).Inc()
		return nil, auditPersistFailed(err)
	}
	log.Infow("emergency record saved", "logId", record.ID)

	metrics.AlertsTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	return &AlertResponse{
		LogID:               record.ID,
		UserName:            user.Name,
		UserPhone:           user.Phone,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		LocationAddress:     address,
		AudioText:           analysis.Transcript,
		SituationAnalysis:   analysis.Analysis,
		DangerLevel:         analysis.DangerLevel,
		SentTo:              sentTo,
		NotificationSuccess: allSuccess,
		CreatedAt:           record.CreatedAt,
	}, nil
}

func timedStage[T any](stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.AlertStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return v, err
}
