package collection

import (
	"strings"

	"github.com/roach88/arcade/internal/fingerprint"
	"github.com/roach88/arcade/internal/record"
)

// Key identifies one cache entry. It is opaque to the store.
type Key string

// NewKey builds a key from a resource kind, the fingerprint of the
// collection it depends on, and any parameters.
// Format: resource(param1,param2)@fingerprint
func NewKey(kind record.Kind, dep uint64, params ...string) Key {
	var b strings.Builder
	b.WriteString(kind.Resource())
	b.WriteByte('(')
	b.WriteString(strings.Join(params, ","))
	b.WriteString(")@")
	b.WriteString(fingerprint.Hex(dep))
	return Key(b.String())
}

// String returns the key text.
func (k Key) String() string {
	return string(k)
}
