package introspect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Predicate selects the fields of an aggregate that play a given role.
//
// Name identifies the predicate in the filter cache: two predicates with the
// same non-empty name must select the same fields. An empty name disables
// caching. Predicates built from types are cached by type identity instead,
// since distinct types can print the same name.
type Predicate struct {
	Name  string
	Match func(Token) bool

	key any
}

type typeKey struct {
	op string
	t  reflect.Type
}

type compositeKey string

var (
	keyIDs    sync.Map // cache key -> uint64
	nextKeyID atomic.Uint64
)

// cacheKey returns the filter cache key of p, or nil if p is not cached.
func (p Predicate) cacheKey() any {
	if p.key != nil {
		return p.key
	}
	if p.Name != "" {
		return p.Name
	}
	return nil
}

func keyID(k any) uint64 {
	if id, ok := keyIDs.Load(k); ok {
		return id.(uint64)
	}
	id, _ := keyIDs.LoadOrStore(k, nextKeyID.Add(1))
	return id.(uint64)
}

// composite builds the cache key of op applied to ps, or nil when any of
// ps is uncached.
func composite(op string, ps ...Predicate) any {
	ids := make([]string, len(ps))
	for i, p := range ps {
		k := p.cacheKey()
		if k == nil {
			return nil
		}
		ids[i] = strconv.FormatUint(keyID(k), 10)
	}
	return compositeKey(op + "(" + strings.Join(ids, ",") + ")")
}

// HasCapability matches fields whose capability is one of cs.
func HasCapability(cs ...Capability) Predicate {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.String()
	}
	return Predicate{
		Name: "cap:" + strings.Join(names, "|"),
		Match: func(t Token) bool {
			for _, c := range cs {
				if t.Capability == c {
					return true
				}
			}
			return false
		},
	}
}

// TypeOf matches fields declared with exactly type F.
func TypeOf[F any]() Predicate {
	ft := reflect.TypeFor[F]()
	return Predicate{
		Name:  "type:" + ft.String(),
		Match: func(t Token) bool { return t.Type == ft },
		key:   typeKey{"type", ft},
	}
}

// Implements matches fields whose type, or a pointer to it, implements I.
// It panics if I is not an interface type.
func Implements[I any]() Predicate {
	it := reflect.TypeFor[I]()
	if it.Kind() != reflect.Interface {
		panic(fmt.Sprintf("introspect: Implements needs an interface type, got %s", it))
	}
	return Predicate{
		Name: "impl:" + it.String(),
		Match: func(t Token) bool {
			return t.Type.Implements(it) || reflect.PointerTo(t.Type).Implements(it)
		},
		key: typeKey{"impl", it},
	}
}

// Tagged matches fields carrying the given struct tag key.
func Tagged(key string) Predicate {
	return Predicate{
		Name: "tag:" + key,
		Match: func(t Token) bool {
			_, ok := t.Tag.Lookup(key)
			return ok
		},
	}
}

// All matches every field.
func All() Predicate {
	return Predicate{Name: "all", Match: func(Token) bool { return true }}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return Predicate{
		Name:  named("not(", p.Name, ")"),
		Match: func(t Token) bool { return !p.Match(t) },
		key:   composite("not", p),
	}
}

// Or matches fields matched by any of ps.
func Or(ps ...Predicate) Predicate {
	return Predicate{
		Name: joinNames("or", ps),
		key:  composite("or", ps...),
		Match: func(t Token) bool {
			for _, p := range ps {
				if p.Match(t) {
					return true
				}
			}
			return false
		},
	}
}

// And matches fields matched by every one of ps.
func And(ps ...Predicate) Predicate {
	return Predicate{
		Name: joinNames("and", ps),
		key:  composite("and", ps...),
		Match: func(t Token) bool {
			for _, p := range ps {
				if !p.Match(t) {
					return false
				}
			}
			return true
		},
	}
}

func joinNames(op string, ps []Predicate) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		if p.Name == "" {
			return ""
		}
		names[i] = p.Name
	}
	return op + "(" + strings.Join(names, ",") + ")"
}

// named concatenates parts unless the inner name is empty, keeping unnamed
// predicates out of the cache.
func named(prefix, inner, suffix string) string {
	if inner == "" {
		return ""
	}
	return prefix + inner + suffix
}
