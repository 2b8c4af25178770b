// Package format renders numbers for treemap tooltips and CLI summaries.
//
// Three styles are supported:
//
//   - plain: fixed decimals with thousands separators ("1,234,567", "3.14")
//   - percentage: the value scaled by 100 with a "%" suffix ("55.6%")
//   - order of magnitude: scaled to K, M, B or T ("1.2M")
//
// Plain formatting picks its own precision when [Options.Decimals] is nil:
// integral values print without decimals, everything else with two.
package format

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options configures [Number]. The zero value formats plainly with automatic
// precision and thousands separators.
type Options struct {
	Decimals         *int   `json:"decimals,omitempty" toml:"decimals,omitempty"`
	Percentage       bool   `json:"percentage,omitempty" toml:"percentage,omitempty"`
	OrderOfMagnitude bool   `json:"order_of_magnitude,omitempty" toml:"order_of_magnitude,omitempty"`
	Prefix           string `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Postfix          string `json:"postfix,omitempty" toml:"postfix,omitempty"`
	NoCommas         bool   `json:"no_commas,omitempty" toml:"no_commas,omitempty"`
}

// Decimals returns a pointer to n for use in [Options.Decimals].
func Decimals(n int) *int { return &n }

// Default precisions.
const (
	defaultFloatDecimals     = 2
	defaultPercentDecimals   = 1
	defaultMagnitudeDecimals = 1
)

var magnitudes = []struct {
	scale  float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

var printer = message.NewPrinter(language.English)

// Number formats x according to opts.
func Number(x float64, opts Options) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return opts.Prefix + strconv.FormatFloat(x, 'f', -1, 64) + opts.Postfix
	}

	var s string
	switch {
	case opts.Percentage:
		d := decimalsOr(opts.Decimals, defaultPercentDecimals)
		s = fixed(x*100, d, !opts.NoCommas) + "%"
	case opts.OrderOfMagnitude:
		s = magnitude(x, decimalsOr(opts.Decimals, defaultMagnitudeDecimals), !opts.NoCommas)
	default:
		d := defaultFloatDecimals
		if x == math.Trunc(x) {
			d = 0
		}
		s = fixed(x, decimalsOr(opts.Decimals, d), !opts.NoCommas)
	}
	return opts.Prefix + s + opts.Postfix
}

// Plain formats x with the given number of decimals and thousands separators.
func Plain(x float64, decimals int) string {
	return Number(x, Options{Decimals: Decimals(decimals)})
}

// Percent formats a fraction as a percentage, e.g. Percent(0.5556, 1) is "55.6%".
func Percent(fraction float64, decimals int) string {
	return Number(fraction, Options{Percentage: true, Decimals: Decimals(decimals)})
}

// Magnitude formats x scaled to its order of magnitude, e.g. "1.2M".
func Magnitude(x float64, decimals int) string {
	return Number(x, Options{OrderOfMagnitude: true, Decimals: Decimals(decimals)})
}

func magnitude(x float64, decimals int, commas bool) string {
	abs := math.Abs(x)
	for i, m := range magnitudes {
		if abs < m.scale {
			continue
		}
		scaled := x / m.scale
		// Rounding may push 999.96K to 1000.0K; report it as 1.0M instead.
		if i > 0 && math.Abs(round(scaled, decimals)) >= 1000 {
			prev := magnitudes[i-1]
			return fixed(x/prev.scale, decimals, commas) + prev.suffix
		}
		return fixed(scaled, decimals, commas) + m.suffix
	}
	if math.Abs(round(x, decimals)) >= 1000 {
		return fixed(x/1e3, decimals, commas) + "K"
	}
	return fixed(x, decimals, commas)
}

func fixed(x float64, decimals int, commas bool) string {
	if decimals < 0 {
		decimals = 0
	}
	if !commas {
		return strconv.FormatFloat(x, 'f', decimals, 64)
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), x)
}

func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

func decimalsOr(d *int, fallback int) int {
	if d == nil {
		return fallback
	}
	return *d
}
