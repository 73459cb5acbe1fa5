// Package filters encodes recipe search state to and from URL query parameters.
//
// A [Selection] maps a tag or ingredient name to [Include] or [Exclude]. A name that is not in the
// map carries no preference; there is no third stored state. Two selections (tags and
// ingredients) plus free text, page and panel visibility make up a [Query], which is always
// derivable from a URL query string and serializable back to one.
package filters

import "sort"

// State is the preference stored for a filter item.
type State int

const (
	// None is never stored; it reports the absence of a key.
	None State = iota
	Include
	Exclude
)

func (s State) String() string {
	switch s {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	}
	return "none"
}

// Next returns the state a click moves to: none, include, exclude, then back to none.
func Next(s State) State {
	switch s {
	case None:
		return Include
	case Include:
		return Exclude
	}
	return None
}

// Selection maps item names to an include or exclude preference.
type Selection map[string]State

// Get reports the state of name, or [None] when it has no entry.
func (s Selection) Get(name string) State {
	if st, ok := s[name]; ok {
		return st
	}
	return None
}

// Set stores st for name. Setting [None] removes the entry.
func (s Selection) Set(name string, st State) {
	if st != Include && st != Exclude {
		delete(s, name)
		return
	}
	s[name] = st
}

// Toggle advances name one step through the none, include, exclude cycle and returns the new state.
func (s Selection) Toggle(name string) State {
	next := Next(s.Get(name))
	s.Set(name, next)
	return next
}

// Clear removes name, returning it to no preference.
func (s Selection) Clear(name string) {
	delete(s, name)
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	c := make(Selection, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Equal reports whether both selections hold the same entries.
func (s Selection) Equal(o Selection) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Included returns the included names in sorted order.
func (s Selection) Included() []string { return s.names(Include) }

// Excluded returns the excluded names in sorted order.
func (s Selection) Excluded() []string { return s.names(Exclude) }

func (s Selection) names(st State) []string {
	var out []string
	for k, v := range s {
		if v == st {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
