package notify

import (
	"bytes"
	"image/png"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/casadocigano/fidelidade-api/internal/config"
	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/infra/observability"
)

func TestWaDigits(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"formatted local number", "(11) 98888-7777", "5511988887777"},
		{"already has country code", "5511988887777", "5511988887777"},
		{"too short", "1234", ""},
		{"empty", "", ""},
		{"ten digits", "1133334444", "551133334444"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := waDigits(tt.phone); got != tt.want {
				t.Errorf("waDigits(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestWhatsAppLink_Eligible(t *testing.T) {
	client := domain.Client{Name: "Maria Silva", Phone: "(11) 98888-7777"}
	outcome := domain.VisitOutcome{VisitsCount: 10, GoalThreshold: 10, Eligible: true}

	link := whatsAppLink(client, outcome, "1 Kg de Vela Palito", "https://www.casadocigano.com.br/")
	if !strings.HasPrefix(link, "https://wa.me/5511988887777?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}

	raw := strings.TrimPrefix(link, "https://wa.me/5511988887777?text=")
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		t.Fatalf("unescape message: %v", err)
	}
	if !strings.Contains(msg, "Oi, Maria!") {
		t.Errorf("expected first-name greeting, got: %s", msg)
	}
	if !strings.Contains(msg, "JÁ PODE resgatar seu brinde: 1 Kg de Vela Palito") {
		t.Errorf("expected eligible copy, got: %s", msg)
	}
	if !strings.Contains(msg, "*CiganoLovers*") {
		t.Errorf("expected program name, got: %s", msg)
	}
}

func TestWhatsAppLink_NotEligible(t *testing.T) {
	client := domain.Client{Name: "Ana", Phone: "11988887777"}
	outcome := domain.VisitOutcome{VisitsCount: 7, GoalThreshold: 10, Remaining: 3}

	link := whatsAppLink(client, outcome, "1 Kg de Vela Palito", "https://www.casadocigano.com.br/")
	msg, err := url.QueryUnescape(strings.SplitN(link, "text=", 2)[1])
	if err != nil {
		t.Fatalf("unescape message: %v", err)
	}
	if !strings.Contains(msg, "Faltam 3 visita(s) para o brinde") {
		t.Errorf("expected remaining copy, got: %s", msg)
	}
}

func TestWhatsAppLink_NoPhone(t *testing.T) {
	client := domain.Client{Name: "Ana"}
	if link := whatsAppLink(client, domain.VisitOutcome{}, "gift", "url"); link != "" {
		t.Errorf("expected empty link without phone, got %s", link)
	}
}

func TestScoreEmailBody(t *testing.T) {
	text, html := scoreEmailBody("Maria Silva", domain.VisitOutcome{
		VisitsCount: 4, GoalThreshold: 10, Remaining: 6,
	}, "1 Kg de Vela Palito")

	if !strings.Contains(text, "Você agora tem 4 visita(s). Meta para brinde: 10.") {
		t.Errorf("unexpected text body: %s", text)
	}
	if !strings.Contains(text, "Faltam 6 visita(s)") {
		t.Errorf("expected remaining count in text: %s", text)
	}
	if !strings.Contains(html, "<b>Maria Silva</b>") {
		t.Errorf("expected bold name in html: %s", html)
	}

	text, _ = scoreEmailBody("Maria", domain.VisitOutcome{
		VisitsCount: 10, GoalThreshold: 10, Eligible: true,
	}, "1 Kg de Vela Palito")
	if !strings.Contains(text, "JÁ PODE resgatar seu brinde") {
		t.Errorf("expected eligible copy: %s", text)
	}
}

func TestRenderCard(t *testing.T) {
	data, err := RenderCard("Maria Silva", 7, 10, 3, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 1080 || bounds.Dy() != 1080 {
		t.Errorf("expected 1080x1080, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestDispatcher_SkipsWithoutSMTP(t *testing.T) {
	cfg := &config.Config{
		NotifyConcurrency: 2,
		NotifyTimeout:     time.Second,
		GiftName:          "1 Kg de Vela Palito",
		ShopURL:           "https://www.casadocigano.com.br/",
	}
	metrics := observability.NewMetrics()
	d := NewDispatcher(cfg, NewMailer(cfg), metrics, zap.NewNop())

	email := "maria@example.com"
	d.VisitRecorded(domain.Client{ID: 1, Name: "Maria", Email: &email}, domain.VisitOutcome{
		VisitsCount: 1, GoalThreshold: 10, Remaining: 9,
	})
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	snap := metrics.Snapshot()
	if snap.EmailSkipped != 1 {
		t.Errorf("expected 1 skipped email, got %d", snap.EmailSkipped)
	}
	if snap.EmailSent != 0 || snap.EmailFailed != 0 {
		t.Errorf("expected no sends without smtp, got %+v", snap)
	}
}

func TestDispatcher_WhatsAppLinkCountsSkip(t *testing.T) {
	cfg := &config.Config{NotifyConcurrency: 1, NotifyTimeout: time.Second}
	metrics := observability.NewMetrics()
	d := NewDispatcher(cfg, NewMailer(cfg), metrics, zap.NewNop())

	if link := d.WhatsAppLink(domain.Client{Name: "Ana"}, domain.VisitOutcome{}); link != "" {
		t.Errorf("expected no link without phone, got %s", link)
	}
	if snap := metrics.Snapshot(); snap.WhatsAppSkipped != 1 {
		t.Errorf("expected 1 skipped whatsapp, got %+v", snap)
	}
}
