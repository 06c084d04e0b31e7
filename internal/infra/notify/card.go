package notify

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/fogleman/gg"
)

// Brand palette.
const (
	colorWine   = "#680026"
	colorGold   = "#D6A72E"
	colorCream  = "#FAF5EB"
	colorSlate  = "#212121"
	cardSide    = 1080
	headerEnd   = 360.0
	goldBandTop = 340.0
)

// RenderCard draws the 1080x1080 loyalty card attached to the score email.
// A TTF at fontPath is used when given; otherwise gg's built-in face keeps
// the card legible without any asset on disk.
func RenderCard(name string, visits int64, goal int, remaining int64, fontPath string) ([]byte, error) {
	dc := gg.NewContext(cardSide, cardSide)

	dc.SetHexColor(colorCream)
	dc.Clear()

	dc.SetHexColor(colorWine)
	dc.DrawRectangle(0, 0, cardSide, headerEnd)
	dc.Fill()
	dc.SetHexColor(colorGold)
	dc.DrawRectangle(0, goldBandTop, cardSide, headerEnd-goldBandTop)
	dc.Fill()

	loadFace := func(size float64) {
		if fontPath == "" {
			return
		}
		_ = dc.LoadFontFace(fontPath, size)
	}

	loadFace(78)
	dc.SetHexColor(colorCream)
	dc.DrawStringAnchored("Programa de Fidelidade", cardSide-60, 120, 1, 0.5)

	loadFace(64)
	dc.SetHexColor(colorSlate)
	dc.DrawStringAnchored(fmt.Sprintf("Olá, %s!", firstName(name)), 60, 450, 0, 0.5)

	loadFace(120)
	dc.SetHexColor(colorWine)
	dc.DrawStringAnchored(fmt.Sprintf("Você tem %d visita(s)", visits), 60, 580, 0, 0.5)

	loadFace(64)
	dc.SetHexColor(colorSlate)
	dc.DrawStringAnchored(fmt.Sprintf("Meta: %d visitas", goal), 60, 700, 0, 0.5)
	if remaining <= 0 {
		dc.SetHexColor(colorWine)
		dc.DrawStringAnchored("Você já pode resgatar seu brinde!", 60, 790, 0, 0.5)
	} else {
		dc.DrawStringAnchored(fmt.Sprintf("Faltam %d visita(s) para o brinde.", remaining), 60, 790, 0, 0.5)
	}

	loadFace(44)
	dc.SetHexColor(colorSlate)
	dc.DrawStringAnchored("Casa do Cigano • Obrigado pela visita!", cardSide/2, 980, 0.5, 0.5)

	dc.SetHexColor(colorWine)
	dc.SetLineWidth(6)
	dc.DrawRectangle(5, 5, cardSide-10, cardSide-10)
	dc.Stroke()

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
