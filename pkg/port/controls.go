package port

import (
	"math"

	"github.com/justyntemme/avgo/pkg/introspect"
)

// Widget identifies how a control is presented to the user.
type Widget int

const (
	WidgetHSlider Widget = iota
	WidgetVSlider
	WidgetSpinbox
	WidgetKnob
	WidgetToggle
	WidgetButton
	WidgetEnum
	WidgetLineEdit
	WidgetXY
	WidgetColor
	WidgetBargraph
)

var widgetNames = [...]string{
	WidgetHSlider:  "hslider",
	WidgetVSlider:  "vslider",
	WidgetSpinbox:  "spinbox",
	WidgetKnob:     "knob",
	WidgetToggle:   "toggle",
	WidgetButton:   "button",
	WidgetEnum:     "enum",
	WidgetLineEdit: "lineedit",
	WidgetXY:       "xy",
	WidgetColor:    "color",
	WidgetBargraph: "bargraph",
}

func (w Widget) String() string {
	if w < 0 || int(w) >= len(widgetNames) {
		return "unknown"
	}
	return widgetNames[w]
}

// Control is a numeric control. Plain values are in the control's range.
type Control interface {
	Widget() Widget
	Plain() float64
	SetPlain(v float64)
}

// Vector is a control made of several numeric components, each exposed to
// the host as its own parameter.
type Vector interface {
	Control
	Dims() int
	Component(i int) float64
	SetComponent(i int, v float64)
}

// Text is a string-valued control. It is not automatable.
type Text interface {
	Text() string
	SetText(s string)
}

// Impulse controls are reset by the host after every tick.
type Impulse interface {
	Reset()
}

type controlCap struct{}

// Capability implements introspect.Capable for every control type.
func (controlCap) Capability() introspect.Capability { return introspect.Control }

// Slider is a continuous control. The `widget` tag may select vslider or
// spinbox.
type Slider struct {
	controlCap
	Value float64
}

func (*Slider) Widget() Widget { return WidgetHSlider }
func (s *Slider) Plain() float64 { return s.Value }
func (s *Slider) SetPlain(v float64) { s.Value = v }

// IntSlider is a discrete control with an integer value.
type IntSlider struct {
	controlCap
	Value int
}

func (*IntSlider) Widget() Widget { return WidgetHSlider }
func (s *IntSlider) Plain() float64 { return float64(s.Value) }
func (s *IntSlider) SetPlain(v float64) { s.Value = int(math.Round(v)) }

// Knob is a continuous rotary control.
type Knob struct {
	controlCap
	Value float64
}

func (*Knob) Widget() Widget { return WidgetKnob }
func (k *Knob) Plain() float64 { return k.Value }
func (k *Knob) SetPlain(v float64) { k.Value = v }

// Toggle is an on/off control.
type Toggle struct {
	controlCap
	Value bool
}

func (*Toggle) Widget() Widget { return WidgetToggle }

func (t *Toggle) Plain() float64 {
	if t.Value {
		return 1
	}
	return 0
}

func (t *Toggle) SetPlain(v float64) { t.Value = v >= 0.5 }

// Button is an impulse: true for the tick in which it was pressed.
type Button struct {
	controlCap
	Value bool
}

func (*Button) Widget() Widget { return WidgetButton }

func (b *Button) Plain() float64 {
	if b.Value {
		return 1
	}
	return 0
}

func (b *Button) SetPlain(v float64) { b.Value = v >= 0.5 }

// Reset releases the button.
func (b *Button) Reset() { b.Value = false }

// Enum selects one of the names in its `values` tag. Value is the index.
type Enum struct {
	controlCap
	Value int
}

func (*Enum) Widget() Widget { return WidgetEnum }
func (e *Enum) Plain() float64 { return float64(e.Value) }
func (e *Enum) SetPlain(v float64) { e.Value = int(math.Round(v)) }

// XY is the value of an XYPad.
type XY struct {
	X, Y float64
}

// XYPad is a two-dimensional control sharing one range.
type XYPad struct {
	controlCap
	Value XY
}

func (*XYPad) Widget() Widget { return WidgetXY }

// Plain returns the X component.
func (p *XYPad) Plain() float64 { return p.Value.X }

// SetPlain sets both components.
func (p *XYPad) SetPlain(v float64) { p.Value = XY{X: v, Y: v} }

func (*XYPad) Dims() int { return 2 }

func (p *XYPad) Component(i int) float64 {
	if i == 1 {
		return p.Value.Y
	}
	return p.Value.X
}

func (p *XYPad) SetComponent(i int, v float64) {
	if i == 1 {
		p.Value.Y = v
		return
	}
	p.Value.X = v
}

// RGBA is the value of a Color control, components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// Color is a color chooser.
type Color struct {
	controlCap
	Value RGBA
}

func (*Color) Widget() Widget { return WidgetColor }

// Plain returns the red component.
func (c *Color) Plain() float64 { return float64(c.Value.R) }

// SetPlain sets every component to v.
func (c *Color) SetPlain(v float64) {
	f := float32(v)
	c.Value = RGBA{R: f, G: f, B: f, A: f}
}

func (*Color) Dims() int { return 4 }

func (c *Color) Component(i int) float64 {
	switch i {
	case 1:
		return float64(c.Value.G)
	case 2:
		return float64(c.Value.B)
	case 3:
		return float64(c.Value.A)
	}
	return float64(c.Value.R)
}

func (c *Color) SetComponent(i int, v float64) {
	f := float32(v)
	switch i {
	case 1:
		c.Value.G = f
	case 2:
		c.Value.B = f
	case 3:
		c.Value.A = f
	default:
		c.Value.R = f
	}
}

// LineEdit is a free text control.
type LineEdit struct {
	controlCap
	Value string
}

func (*LineEdit) Widget() Widget { return WidgetLineEdit }
func (l *LineEdit) Text() string { return l.Value }
func (l *LineEdit) SetText(s string) { l.Value = s }

// Bargraph is a meter, written by the processor in its Outputs.
type Bargraph struct {
	controlCap
	Value float64
}

func (*Bargraph) Widget() Widget { return WidgetBargraph }
func (b *Bargraph) Plain() float64 { return b.Value }
func (b *Bargraph) SetPlain(v float64) { b.Value = v }
