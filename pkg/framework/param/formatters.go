package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Formatter pairs a display function with its inverse.
type Formatter struct {
	Format func(float64) string
	Parse  func(string) (float64, error)
}

// SilenceDB is the level at or below which decibel values display as -inf.
const SilenceDB = -120.0

// suffix is a unit suffix accepted when parsing, and the factor that
// converts it to the parameter's unit.
type suffix struct {
	text  string
	scale float64
}

var unitFormatters = map[string]Formatter{
	"hz": {formatHz, scaled(suffix{"khz", 1000}, suffix{"hz", 1})},
	"db": {formatDB, parseDB},
	"%":  {formatPercent, scaled(suffix{"%", 1})},
	"ms": {formatMs, scaled(suffix{"µs", 1e-3}, suffix{"us", 1e-3}, suffix{"ms", 1}, suffix{"s", 1000})},
	"s":  {formatSeconds, scaled(suffix{"µs", 1e-6}, suffix{"us", 1e-6}, suffix{"ms", 1e-3}, suffix{"s", 1})},
}

// OnOff displays a toggle as "On" or "Off".
var OnOff = Formatter{formatOnOff, parseOnOff}

// FormatterForUnit returns the formatter for a unit string such as "Hz",
// "dB", "%", "ms" or "s". Units are matched case-insensitively.
func FormatterForUnit(unit string) (Formatter, bool) {
	f, ok := unitFormatters[strings.ToLower(strings.TrimSpace(unit))]
	return f, ok
}

// scaled returns a parser for numbers followed by one of the suffixes.
// Suffixes are tried in order, so longer ones sharing an ending go first.
func scaled(suffixes ...suffix) func(string) (float64, error) {
	return func(s string) (float64, error) {
		num := strings.ToLower(strings.TrimSpace(s))
		scale := 1.0
		for _, sf := range suffixes {
			if strings.HasSuffix(num, sf.text) {
				num, scale = strings.TrimSuffix(num, sf.text), sf.scale
				break
			}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", s, err)
		}
		return v * scale, nil
	}
}

func formatHz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

func formatDB(db float64) string {
	if db <= SilenceDB || math.IsNaN(db) {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}

func parseDB(s string) (float64, error) {
	if strings.Contains(strings.ToLower(s), "inf") || strings.Contains(s, "∞") {
		return SilenceDB, nil
	}
	return scaled(suffix{"db", 1})(s)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

func formatMs(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.2f µs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.1f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

func formatSeconds(s float64) string {
	if s < 1 {
		return formatMs(s * 1000)
	}
	return fmt.Sprintf("%.2f s", s)
}

func formatOnOff(v float64) string {
	if v > 0.5 {
		return "On"
	}
	return "Off"
}

func parseOnOff(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "true", "1":
		return 1, nil
	case "off", "no", "false", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("expected 'on' or 'off', got %q", s)
}
