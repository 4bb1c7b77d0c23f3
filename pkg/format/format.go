// Package format reúne utilidades puras de formateo sensible al locale para
// montos y fechas. Sin estado: seguras para uso concurrente.
package format

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultTag es el locale por defecto de la aplicación.
var DefaultTag = language.MustParse("es-CO")

// Currency formatea un monto en la moneda ISO 4217 indicada según el locale.
// Código desconocido cae a COP.
func Currency(amount decimal.Decimal, isoCode string, tag language.Tag) string {
	unit, err := currency.ParseISO(isoCode)
	if err != nil {
		unit = currency.MustParseISO("COP")
	}
	f, _ := amount.Float64()
	p := message.NewPrinter(tag)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(f)))
}

// Date formatea una fecha según el idioma base del locale.
// Fecha cero (movimiento sin timestamp) se representa como "-".
func Date(t time.Time, tag language.Tag) string {
	if t.IsZero() {
		return "-"
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return t.Format("Jan 2, 2006 3:04 PM")
	}
	return t.Format("02/01/2006 15:04")
}
