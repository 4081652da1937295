// Package properties implements the key/value property bag attached to
// every registered resource, and the subset-match predicate used to
// select resources for a declared slot.
package properties

// NameKey is the reserved property key every Properties value carries.
const NameKey = "name"

// Properties is a case-sensitive string-to-string attribute set attached
// to a registered resource. The reserved key "name" is expected to be
// present on every value produced by New.
type Properties map[string]string

// New creates a Properties value for a resource with the given name.
// Additional key/value pairs can be supplied as "key", "value" pairs.
func New(name string, kv ...string) Properties {
	p := make(Properties, 1+len(kv)/2)
	p[NameKey] = name
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i]] = kv[i+1]
	}
	return p
}

// Name returns the value of the reserved "name" key.
func (p Properties) Name() string {
	return p[NameKey]
}

// Clone returns an independent copy of p.
func (p Properties) Clone() Properties {
	cp := make(Properties, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

// Matches reports whether every key/value pair in required is present in
// p with an identical value. A missing key or a mismatched value is a
// non-match. An empty required set always matches. Matching is
// case-sensitive.
func (p Properties) Matches(required map[string]string) bool {
	for k, v := range required {
		if got, ok := p[k]; !ok || got != v {
			return false
		}
	}
	return true
}
