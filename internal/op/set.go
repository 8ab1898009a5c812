package op

// Set is a whitelist of accepted operation types.
// The zero value accepts only the always-allowed types.
type Set uint32

// NewSet builds a whitelist from types. A Last value terminates the list;
// anything after it is ignored.
func NewSet(types ...Type) Set {
	var s Set
	for _, t := range types {
		if t == Last {
			break
		}
		s = s.With(t)
	}

	return s
}

// With returns a copy of s that also contains t.
func (s Set) With(t Type) Set {
	if !t.Valid() {
		return s
	}

	return s | 1<<uint(t)
}

// Contains reports whether t was explicitly whitelisted.
func (s Set) Contains(t Type) bool {
	return t.Valid() && s&(1<<uint(t)) != 0
}

// Accepts reports whether an operation of type t may appear in a sequence.
// Exit, Crash and Help are always accepted.
func (s Set) Accepts(t Type) bool {
	switch t {
	case Exit, Crash, Help:
		return true
	default:
		return s.Contains(t)
	}
}

// Types returns the accepted types in enumeration order, always-allowed
// types included.
func (s Set) Types() []Type {
	types := make([]Type, 0, Last)
	for t := Type(0); t < Last; t++ {
		if s.Accepts(t) {
			types = append(types, t)
		}
	}

	return types
}
