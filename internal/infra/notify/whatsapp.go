package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// waDigits normalizes a phone for wa.me: digits only, at least 10 of them,
// prefixed with the Brazilian country code when missing. Empty result means
// the phone is unusable.
func waDigits(phone string) string {
	var b strings.Builder
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return ""
	}
	if !strings.HasPrefix(digits, "55") {
		digits = "55" + digits
	}
	return digits
}

func firstName(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) == 0 {
		return "cliente"
	}
	return fields[0]
}

// whatsAppMessage builds the pre-filled client message, paragraph style,
// no emojis.
func whatsAppMessage(client domain.Client, outcome domain.VisitOutcome, giftName, shopURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Oi, %s! Obrigado por confiar na Casa do Cigano.\n\n", firstName(client.Name))
	b.WriteString("Esperamos que você ame seu novo produto!\n\n")
	fmt.Fprintf(&b, "Você está participando do nosso programa de fidelidade *CiganoLovers* e você tem %d visita(s).\n\n", outcome.VisitsCount)
	if outcome.Eligible {
		fmt.Fprintf(&b, "Você JÁ PODE resgatar seu brinde: %s (meta %d visitas).\n\n", giftName, outcome.GoalThreshold)
	} else {
		fmt.Fprintf(&b, "Faltam %d visita(s) para o brinde %s (meta %d visitas).\n\n", outcome.Remaining, giftName, outcome.GoalThreshold)
	}
	b.WriteString("Confira as novidades em nossa loja: " + shopURL)
	return b.String()
}

// whatsAppLink returns the wa.me deep link for the client, or "" when the
// phone cannot be used.
func whatsAppLink(client domain.Client, outcome domain.VisitOutcome, giftName, shopURL string) string {
	digits := waDigits(client.Phone)
	if digits == "" {
		return ""
	}
	msg := whatsAppMessage(client, outcome, giftName, shopURL)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(msg)
}
