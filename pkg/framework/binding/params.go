package binding

import (
	"fmt"
	"math"
	"reflect"

	"github.com/justyntemme/avgo/pkg/framework/param"
	"github.com/justyntemme/avgo/pkg/introspect"
	"github.com/justyntemme/avgo/pkg/port"
)

var (
	intSliderType = reflect.TypeFor[port.IntSlider]()

	xyComponents    = []string{"X", "Y"}
	colorComponents = []string{"R", "G", "B", "A"}
)

func (b *Binding[I, O]) buildParameters() error {
	b.params = param.NewAutoRegistry()

	n := b.controlIn.Size()
	b.controlMeta = make([]port.Meta, n)
	b.controlParams = make([][]*param.Parameter, n)
	for i := 0; i < n; i++ {
		tok, _ := b.controlIn.Token(i)
		m, err := port.MetaOf(tok)
		if err != nil {
			return err
		}
		b.controlMeta[i] = m

		ps := controlParameters(tok, m)
		for _, p := range ps {
			if err := b.params.Register(p); err != nil {
				return fmt.Errorf("control %s: %w", tok.Name, err)
			}
		}
		b.controlParams[i] = ps

		if reflect.PointerTo(tok.Type).Implements(reflect.TypeFor[port.Impulse]()) {
			b.impulses = append(b.impulses, i)
		}
	}

	b.meterParams = make([]*param.Parameter, b.meterOut.Size())
	for i := range b.meterParams {
		tok, _ := b.meterOut.Token(i)
		m, err := port.MetaOf(tok)
		if err != nil {
			return err
		}
		p := param.New(0, m.Name).
			Range(m.Range.Min, m.Range.Max).
			Unit(m.Unit).
			Default(m.Range.Init).
			ReadOnly().
			Build()
		if err := b.params.Register(p); err != nil {
			return fmt.Errorf("meter %s: %w", tok.Name, err)
		}
		b.meterParams[i] = p
	}

	b.valueParams = make([]*param.Parameter, b.valueOut.Size())
	for i := range b.valueParams {
		tok, _ := b.valueOut.Token(i)
		p, err := valueParameter(tok)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		if err := b.params.Register(p); err != nil {
			return fmt.Errorf("value %s: %w", tok.Name, err)
		}
		b.valueParams[i] = p
	}
	return nil
}

// controlParameters returns the parameters of one input control: one per
// component for vector controls, one otherwise.
func controlParameters(tok introspect.Token, m port.Meta) []*param.Parameter {
	switch m.Widget {
	case port.WidgetXY:
		ps := make([]*param.Parameter, len(xyComponents))
		for i, c := range xyComponents {
			ps[i] = scalarParameter(tok, m, m.Name+" "+c)
		}
		return ps
	case port.WidgetColor:
		ps := make([]*param.Parameter, len(colorComponents))
		for i, c := range colorComponents {
			ps[i] = param.New(0, m.Name+" "+c).
				Range(m.Range.Min, m.Range.Max).
				Default(m.Range.Init).
				Hidden().
				Build()
		}
		return ps
	}
	return []*param.Parameter{scalarParameter(tok, m, m.Name)}
}

func scalarParameter(tok introspect.Token, m port.Meta, name string) *param.Parameter {
	pb := param.New(0, name).Range(m.Range.Min, m.Range.Max)
	switch m.Widget {
	case port.WidgetToggle, port.WidgetButton:
		pb.Toggle()
	case port.WidgetEnum:
		pb.Choices(m.Values...)
	default:
		if tok.Type == intSliderType && m.Range.Max > m.Range.Min {
			pb.Steps(int32(math.Round(m.Range.Max - m.Range.Min)))
		}
	}
	if m.Unit != "" {
		pb.Unit(m.Unit)
	}
	return pb.Default(m.Range.Init).Build()
}

// valueParameter returns a read-only parameter for a numeric or boolean
// value port, or nil for any other value type. The range comes from the
// `range` tag and defaults to [0, 1].
func valueParameter(tok introspect.Token) (*param.Parameter, error) {
	kind, ok := scalarKind(tok.Type)
	if !ok {
		return nil, nil
	}
	name := tok.Label()
	pb := param.New(0, name).Unit(tok.Tag.Get("unit"))
	if kind == reflect.Bool {
		pb.Toggle()
	} else {
		r := port.Range{Min: 0, Max: 1}
		if s := tok.Tag.Get("range"); s != "" {
			var err error
			if r, err = port.ParseRange(s); err != nil {
				return nil, fmt.Errorf("value %s: %w", tok.Name, err)
			}
		}
		pb.Range(r.Min, r.Max).Default(r.Init)
	}
	return pb.ReadOnly().Build(), nil
}

// scalarKind resolves the kind a value port publishes: the type itself, or
// the first field of a wrapper struct such as port.Value[T].
func scalarKind(t reflect.Type) (reflect.Kind, bool) {
	if t.Kind() == reflect.Struct {
		if t.NumField() == 0 {
			return reflect.Invalid, false
		}
		t = t.Field(0).Type
	}
	switch k := t.Kind(); k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Bool:
		return k, true
	}
	return reflect.Invalid, false
}

func scalarValue(v reflect.Value) float64 {
	if v.Kind() == reflect.Struct {
		v = v.Field(0)
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
	}
	return 0
}

// pushControls writes the current parameter values into the input
// controls. It stops at the first value outside its control's range.
func (b *Binding[I, O]) pushControls() error {
	var rejected error
	i := 0
	b.controlIn.ForAllUnless(b.in, func(f introspect.Field) bool {
		ps, m := b.controlParams[i], &b.controlMeta[i]
		i++

		ctrl, ok := f.Addr().(port.Control)
		if !ok || len(ps) == 0 {
			return true
		}
		if vec, ok := ctrl.(port.Vector); ok && len(ps) == vec.Dims() {
			for d, p := range ps {
				v := p.GetPlainValue()
				if !inRange(v, m.Range) {
					rejected = b.reject(p.Name, v, m.Range)
					return false
				}
				vec.SetComponent(d, v)
			}
			return true
		}

		v := ps[0].GetPlainValue()
		if !inRange(v, m.Range) {
			rejected = b.reject(ps[0].Name, v, m.Range)
			return false
		}
		ctrl.SetPlain(v)
		return true
	})
	return rejected
}

func inRange(v float64, r port.Range) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	eps := 1e-9 * math.Max(1, r.Max-r.Min)
	return v >= r.Min-eps && v <= r.Max+eps
}

func (b *Binding[I, O]) reject(name string, v float64, r port.Range) error {
	b.metrics.reject(name)
	b.logger.Warn("control %q rejected: %g outside [%g, %g]", name, v, r.Min, r.Max)
	return fmt.Errorf("%w: %s = %g outside [%g, %g]", ErrInvalidControl, name, v, r.Min, r.Max)
}

// SetControl sets a writable parameter by name from a plain value. Values
// outside the parameter's range are rejected.
func (b *Binding[I, O]) SetControl(name string, plain float64) error {
	p := b.params.GetByName(name)
	if p == nil {
		return fmt.Errorf("%w: no control %q", ErrInvalidControl, name)
	}
	if p.ReadOnly() {
		return fmt.Errorf("%w: %q is read-only", ErrInvalidControl, name)
	}
	r := port.Range{Min: p.Min, Max: p.Max}
	if !inRange(plain, r) {
		return b.reject(name, plain, r)
	}
	p.SetPlainValue(plain)
	return nil
}

// SetText sets a text control by label.
func (b *Binding[I, O]) SetText(name, text string) error {
	found := false
	b.textIn.ForAllUnless(b.in, func(f introspect.Field) bool {
		if f.Label() != name {
			return true
		}
		f.Addr().(port.Text).SetText(text)
		found = true
		return false
	})
	if !found {
		return fmt.Errorf("%w: no text control %q", ErrInvalidControl, name)
	}
	return nil
}

func (b *Binding[I, O]) initText() error {
	var err error
	b.textIn.ForAllUnless(b.in, func(f introspect.Field) bool {
		m, merr := port.MetaOf(f.Token)
		if merr != nil {
			err = merr
			return false
		}
		if m.Text != "" {
			f.Addr().(port.Text).SetText(m.Text)
		}
		return true
	})
	return err
}

// publishOutputs copies output meters and values into their read-only
// parameters.
func (b *Binding[I, O]) publishOutputs() {
	b.meterOut.ForAllN(b.out, func(f introspect.Field, i int) {
		if c, ok := f.Addr().(port.Control); ok {
			b.meterParams[i].SetPlainValue(c.Plain())
		}
	})
	b.valueOut.ForAllN(b.out, func(f introspect.Field, i int) {
		if p := b.valueParams[i]; p != nil {
			p.SetPlainValue(scalarValue(f.Value()))
		}
	})
}
