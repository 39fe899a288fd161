package internal

import (
	"os"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats money amounts for one currency and locale
type Currency struct {
	Code    string // "EUR", "USD", "SEK"
	unit    currency.Unit
	tag     language.Tag
	printer *message.Printer
	symbol  string
}

// symbolOverrides provides custom symbols where x/text defaults aren't ideal
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"ISK": "kr",
}

// defaultLocaleForCurrency is the "home" locale used when no locale is configured
var defaultLocaleForCurrency = map[string]language.Tag{
	"EUR": language.German,
	"USD": language.AmericanEnglish,
	"GBP": language.BritishEnglish,
	"CHF": language.German,
	"SEK": language.Swedish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"PLN": language.Polish,
	"CZK": language.Czech,
	"JPY": language.Japanese,
	"CAD": language.CanadianFrench,
	"AUD": language.MustParse("en-AU"),
	"BRL": language.BrazilianPortuguese,
}

// DefaultCurrency is used when nothing else is configured
const DefaultCurrency = "EUR"

// GetCurrency returns the Currency for a code, formatted in the currency's home locale
func GetCurrency(code string) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	tag, ok := defaultLocaleForCurrency[code]
	if !ok {
		tag = language.English
	}
	return GetCurrencyWithLocale(code, tag)
}

// GetCurrencyWithLocale returns a Currency with a specific locale for formatting
func GetCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))

	unit, err := currency.ParseISO(code)
	isUnknown := err != nil
	if isUnknown {
		unit = currency.EUR // fallback unit for number formatting only
	}

	c := Currency{
		Code:    code,
		unit:    unit,
		tag:     tag,
		printer: message.NewPrinter(tag),
	}

	switch sym, ok := symbolOverrides[code]; {
	case ok:
		c.symbol = sym
	case isUnknown:
		c.symbol = code
	default:
		c.symbol = c.printer.Sprint(currency.NarrowSymbol(c.unit))
	}
	return c
}

// ResolveCurrency builds the Currency for a configured code and optional locale.
// The code "auto" derives both from the environment locale, falling back to EUR.
func ResolveCurrency(code, locale string) Currency {
	if strings.EqualFold(code, "auto") || code == "" {
		detected, tag := parseCurrencyFromLocale(detectSystemLocale())
		if detected == "" {
			return GetCurrency(DefaultCurrency)
		}
		if locale == "" {
			return GetCurrencyWithLocale(detected, tag)
		}
		code = detected
	}
	if locale != "" {
		if tag, err := language.Parse(locale); err == nil {
			return GetCurrencyWithLocale(code, tag)
		}
	}
	return GetCurrency(code)
}

// detectSystemLocale reads the locale from the environment.
// Priority: LC_MONETARY (most specific), LC_ALL, LANG.
func detectSystemLocale() string {
	for _, envVar := range []string{"LC_MONETARY", "LC_ALL", "LANG"} {
		locale := os.Getenv(envVar)
		if locale != "" && locale != "C" && locale != "POSIX" {
			return locale
		}
	}
	return ""
}

// parseCurrencyFromLocale extracts currency code and language tag from a locale string.
// Examples: "de_DE.UTF-8" -> ("EUR", de-DE), "sv_SE" -> ("SEK", sv-SE)
func parseCurrencyFromLocale(locale string) (string, language.Tag) {
	base := locale
	if idx := strings.Index(base, "."); idx != -1 {
		base = base[:idx]
	}
	if idx := strings.Index(base, "@"); idx != -1 {
		base = base[:idx]
	}

	tag, err := language.Parse(strings.Replace(base, "_", "-", 1))
	if err != nil {
		return "", language.Und
	}

	_, _, region := tag.Raw()
	if region.String() == "" || region.String() == "ZZ" {
		return "", language.Und
	}

	unit, ok := currency.FromRegion(region)
	if !ok {
		return "", language.Und
	}
	return unit.String(), tag
}

// isPrefix returns true if the currency symbol goes before the amount.
// x/text does not expose CLDR symbol placement, so this list is maintained by hand.
func (c Currency) isPrefix() bool {
	switch c.Code {
	case "USD", "GBP", "JPY", "CAD", "AUD":
		return true
	default:
		return false
	}
}

// Format formats an amount with two decimals and the currency symbol ("12,99 €")
func (c Currency) Format(amount float64) string {
	if c.printer == nil {
		c = GetCurrency(DefaultCurrency)
	}
	formatted := c.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))

	if c.isPrefix() {
		return c.symbol + formatted
	}
	return formatted + " " + c.symbol
}
