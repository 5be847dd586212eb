package binding

import "github.com/justyntemme/avgo/pkg/introspect"

// WorkingSet lists the fields of one port struct matching one role. Tokens
// are in predicate index order.
type WorkingSet struct {
	Direction string
	Name      string
	Predicate string
	Tokens    []introspect.Token
}

// WorkingSets returns the input and output working sets of the binding,
// including empty ones.
func (b *Binding[I, O]) WorkingSets() []WorkingSet {
	return []WorkingSet{
		workingSet("in", "audio channels", introspect.Filter[I](introspect.HasCapability(introspect.AudioChannel))),
		workingSet("in", "audio buses", introspect.Filter[I](introspect.HasCapability(introspect.AudioBus))),
		workingSet("in", "spectrum channels", b.spectrumIn),
		workingSet("in", "soundfiles", b.soundfileIn),
		workingSet("in", "controls", b.controlIn),
		workingSet("in", "text controls", b.textIn),
		workingSet("out", "audio", b.audioOut),
		workingSet("out", "values", b.valueOut),
		workingSet("out", "meters", b.meterOut),
	}
}

func workingSet[T any](dir, name string, f introspect.Filtered[T]) WorkingSet {
	return WorkingSet{
		Direction: dir,
		Name:      name,
		Predicate: f.Predicate().Name,
		Tokens:    introspect.FilterTypes(f, func(t introspect.Token) introspect.Token { return t }),
	}
}
