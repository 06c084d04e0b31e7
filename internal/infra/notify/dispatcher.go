package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/casadocigano/fidelidade-api/internal/config"
	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/infra/observability"
	"github.com/casadocigano/fidelidade-api/internal/infra/resilience"
)

// Dispatcher fans a recorded visit out to the client channels. Email is
// sent asynchronously and best-effort: a failure is logged and counted,
// never surfaced to the API caller. The WhatsApp channel only builds a
// deep link, so it stays synchronous.
type Dispatcher struct {
	mailer   *Mailer
	breaker  *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	log      *zap.Logger

	giftName    string
	shopURL     string
	testEmailTo string
	fontPath    string
	timeout     time.Duration

	group errgroup.Group
}

// NewDispatcher wires the dispatcher from configuration. The breaker keeps
// a flapping SMTP server from stalling every visit registration.
func NewDispatcher(cfg *config.Config, mailer *Mailer, metrics *observability.Metrics, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:      mailer,
		breaker:     resilience.NewCircuitBreaker("smtp"),
		bulkhead:    resilience.NewBulkhead(cfg.NotifyConcurrency),
		metrics:     metrics,
		log:         log,
		giftName:    cfg.GiftName,
		shopURL:     cfg.ShopURL,
		testEmailTo: cfg.TestEmailTo,
		fontPath:    cfg.CardFontPath,
		timeout:     cfg.NotifyTimeout,
	}
}

// Close drains in-flight notifications. Called on shutdown.
func (d *Dispatcher) Close() error {
	return d.group.Wait()
}

// WhatsAppLink builds the wa.me handoff link, or "" when the client's
// phone cannot be used.
func (d *Dispatcher) WhatsAppLink(client domain.Client, outcome domain.VisitOutcome) string {
	link := whatsAppLink(client, outcome, d.giftName, d.shopURL)
	if link == "" {
		d.metrics.IncrNotification("whatsapp", "skipped")
		return ""
	}
	d.metrics.IncrNotification("whatsapp", "sent")
	return link
}

// VisitRecorded queues the score email for the client. Fire and forget.
func (d *Dispatcher) VisitRecorded(client domain.Client, outcome domain.VisitOutcome) {
	id := uuid.NewString()
	d.group.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.bulkhead.Acquire(ctx); err != nil {
			d.metrics.IncrNotification("email", "skipped")
			d.log.Warn("notification dropped, no dispatch slot",
				zap.String("notification_id", id), zap.Error(err))
			return nil
		}
		defer d.bulkhead.Release()

		d.sendScoreEmail(id, client, outcome)
		return nil
	})
}

func (d *Dispatcher) sendScoreEmail(id string, client domain.Client, outcome domain.VisitOutcome) {
	to := d.testEmailTo
	if client.Email != nil && *client.Email != "" {
		to = *client.Email
	}
	if to == "" || !d.mailer.Configured() {
		d.metrics.IncrNotification("email", "skipped")
		return
	}

	subject := "Sua pontuação - Programa de Fidelidade Casa do Cigano"
	text, html := scoreEmailBody(client.Name, outcome, d.giftName)

	// Card rendering is best-effort; the email goes out without it.
	card, err := RenderCard(client.Name, outcome.VisitsCount, outcome.GoalThreshold, outcome.Remaining, d.fontPath)
	if err != nil {
		d.log.Warn("card render failed", zap.String("notification_id", id), zap.Error(err))
		card = nil
	}

	_, err = d.breaker.Execute(func() (any, error) {
		return nil, d.mailer.Send(to, subject, text, html, card)
	})
	if err != nil {
		d.metrics.IncrNotification("email", "failed")
		d.log.Warn("score email failed",
			zap.String("notification_id", id),
			zap.Uint("client_id", client.ID),
			zap.Error(err))
		return
	}

	d.metrics.IncrNotification("email", "sent")
	d.log.Info("score email sent",
		zap.String("notification_id", id),
		zap.Uint("client_id", client.ID),
		zap.Int64("visits_count", outcome.VisitsCount))
}

func scoreEmailBody(name string, outcome domain.VisitOutcome, giftName string) (text, html string) {
	var closing string
	if outcome.Eligible {
		closing = fmt.Sprintf("Você JÁ PODE resgatar seu brinde (%s)!", giftName)
	} else {
		closing = fmt.Sprintf("Faltam %d visita(s) para o próximo brinde (%s).", outcome.Remaining, giftName)
	}

	text = fmt.Sprintf(
		"Olá %s,\n\nVocê agora tem %d visita(s). Meta para brinde: %d. %s\n\nObrigado pela visita!",
		name, outcome.VisitsCount, outcome.GoalThreshold, closing)

	var htmlClosing string
	if outcome.Eligible {
		htmlClosing = fmt.Sprintf("Você <b>JÁ PODE</b> resgatar seu brinde (%s)!", giftName)
	} else {
		htmlClosing = fmt.Sprintf("Faltam <b>%d</b> visita(s) para o próximo brinde (%s).", outcome.Remaining, giftName)
	}
	html = fmt.Sprintf(
		"<p>Olá <b>%s</b>,</p><p>Você agora tem <b>%d</b> visita(s). Meta para brinde: <b>%d</b>.</p><p>%s</p><p>Obrigado pela visita!<br/>Casa do Cigano</p>",
		name, outcome.VisitsCount, outcome.GoalThreshold, htmlClosing)
	return text, html
}
