package param

// Builder configures a Parameter. Calls may come in any order; the default
// is normalized against the final range when the parameter is built.
type Builder struct {
	param      *Parameter
	plain      float64
	hasDefault bool
}

// New starts an automatable parameter over [0, 1]. An ID of 0 lets an
// AutoRegistry assign one.
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:    id,
			Name:  name,
			Max:   1,
			Flags: CanAutomate,
		},
	}
}

// Range sets the plain value range.
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min, b.param.Max = min, max
	return b
}

// Default sets the default as a plain value.
func (b *Builder) Default(plain float64) *Builder {
	b.plain, b.hasDefault = plain, true
	return b
}

// Unit sets the unit string and, unless a formatter is already set, the
// formatter registered for that unit.
func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	if b.param.formatFunc == nil {
		if f, ok := FormatterForUnit(unit); ok {
			b.Formatter(f.Format, f.Parse)
		}
	}
	return b
}

// Steps makes the parameter discrete with count steps across its range.
func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

// Toggle makes a two-state parameter displayed as On/Off.
func (b *Builder) Toggle() *Builder {
	b.param.Min, b.param.Max, b.param.StepCount = 0, 1, 1
	return b.Formatter(OnOff.Format, OnOff.Parse)
}

// Choices makes a list parameter over names. The plain range becomes
// 0..len(names)-1.
func (b *Builder) Choices(names ...string) *Builder {
	n := max(len(names)-1, 0)
	b.param.Choices = append([]string(nil), names...)
	b.param.Min, b.param.Max = 0, float64(n)
	b.param.StepCount = int32(n)
	b.param.Flags |= IsList
	return b
}

// ReadOnly marks a parameter the processor writes and the host only
// displays. Read-only parameters are not automatable.
func (b *Builder) ReadOnly() *Builder {
	b.param.Flags = b.param.Flags&^CanAutomate | IsReadOnly
	return b
}

// Hidden keeps the parameter out of generic editors and automation.
func (b *Builder) Hidden() *Builder {
	b.param.Flags = b.param.Flags&^CanAutomate | IsHidden
	return b
}

// Formatter sets custom value formatting and parsing.
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the parameter set to its default value.
func (b *Builder) Build() *Parameter {
	p := b.param
	if b.hasDefault {
		p.DefaultValue = p.Normalize(b.plain)
	}
	p.SetValue(p.DefaultValue)
	return p
}
