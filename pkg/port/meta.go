package port

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/justyntemme/avgo/pkg/introspect"
)

// Range is the plain range of a control.
type Range struct {
	Min, Max, Init float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Meta is the metadata of a port, read from its struct tags:
//
//	Gain port.Slider `name:"Gain" range:"-24,24,0" unit:"dB"`
//	Mode port.Enum   `values:"Soft,Hard" init:"Hard"`
//	In   port.AudioBus `channels:"2"`
//	Path port.LineEdit `init:"default.wav"`
type Meta struct {
	Name     string
	Unit     string
	Widget   Widget
	Range    Range
	Values   []string
	Text     string
	Channels int
}

// DefaultRange returns the range used when a control has no `range` tag.
func DefaultRange(w Widget) Range {
	switch w {
	case WidgetToggle, WidgetButton:
		return Range{Min: 0, Max: 1, Init: 0}
	case WidgetColor:
		return Range{Min: 0, Max: 1, Init: 1}
	case WidgetBargraph:
		return Range{Min: 0, Max: 1, Init: 0}
	}
	return Range{Min: 0, Max: 1, Init: 0.5}
}

var intSliderType = reflect.TypeFor[IntSlider]()

// ParseRange parses "min,max,init". Init may be omitted and defaults to min.
func ParseRange(s string) (Range, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return Range{}, fmt.Errorf("range %q: want min,max[,init]", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Range{}, fmt.Errorf("range %q: %w", s, err)
		}
		vals[i] = v
	}
	r := Range{Min: vals[0], Max: vals[1], Init: vals[0]}
	if len(vals) == 3 {
		r.Init = vals[2]
	}
	if r.Max < r.Min {
		return Range{}, fmt.Errorf("range %q: max below min", s)
	}
	if !r.Contains(r.Init) {
		return Range{}, fmt.Errorf("range %q: init outside [min, max]", s)
	}
	return r, nil
}

// ParseValues splits a comma separated `values` tag.
func ParseValues(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// MetaOf reads the metadata of the field described by tok.
func MetaOf(tok introspect.Token) (Meta, error) {
	m := Meta{
		Name: tok.Label(),
		Unit: tok.Tag.Get("unit"),
	}

	switch tok.Capability {
	case introspect.AudioBus:
		m.Channels = 2
		if s := tok.Tag.Get("channels"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return Meta{}, fmt.Errorf("field %s: invalid channels %q", tok.Name, s)
			}
			m.Channels = n
		}
		return m, nil
	case introspect.AudioChannel, introspect.Spectrum:
		m.Channels = 1
		return m, nil
	case introspect.Control:
	default:
		return m, nil
	}

	if w, ok := widgetOf(tok.Type); ok {
		m.Widget = w
	}
	if s := tok.Tag.Get("widget"); s != "" {
		w, err := parseWidget(s)
		if err != nil {
			return Meta{}, fmt.Errorf("field %s: %w", tok.Name, err)
		}
		m.Widget = w
	}

	m.Range = DefaultRange(m.Widget)
	if tok.Type == intSliderType {
		m.Range = Range{Min: 0, Max: 127, Init: 64}
	}

	if m.Widget == WidgetEnum {
		m.Values = ParseValues(tok.Tag.Get("values"))
		if len(m.Values) == 0 {
			return Meta{}, fmt.Errorf("field %s: enum without values", tok.Name)
		}
		m.Range = Range{Min: 0, Max: float64(len(m.Values) - 1)}
		if init := tok.Tag.Get("init"); init != "" {
			idx := indexOfValue(m.Values, init)
			if idx < 0 {
				return Meta{}, fmt.Errorf("field %s: init %q not in values", tok.Name, init)
			}
			m.Range.Init = float64(idx)
		}
		return m, nil
	}

	if s := tok.Tag.Get("range"); s != "" {
		r, err := ParseRange(s)
		if err != nil {
			return Meta{}, fmt.Errorf("field %s: %w", tok.Name, err)
		}
		m.Range = r
	}
	if init := tok.Tag.Get("init"); init != "" {
		switch m.Widget {
		case WidgetToggle:
			b, err := strconv.ParseBool(init)
			if err != nil {
				return Meta{}, fmt.Errorf("field %s: init %q: %w", tok.Name, init, err)
			}
			m.Range.Init = 0
			if b {
				m.Range.Init = 1
			}
		case WidgetLineEdit:
			m.Text = init
		}
	}
	return m, nil
}

func widgetOf(t reflect.Type) (Widget, bool) {
	if w, ok := reflect.New(t).Interface().(interface{ Widget() Widget }); ok {
		return w.Widget(), true
	}
	return 0, false
}

func parseWidget(s string) (Widget, error) {
	for w, name := range widgetNames {
		if name == strings.ToLower(s) {
			return Widget(w), nil
		}
	}
	return 0, fmt.Errorf("unknown widget %q", s)
}

func indexOfValue(values []string, v string) int {
	for i, s := range values {
		if strings.EqualFold(s, v) {
			return i
		}
	}
	return -1
}
