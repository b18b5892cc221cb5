package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/arcade/internal/record"
)

// names maps usernames to addresses and back, so scenarios and golden
// files can name players the way a person would.
type names struct {
	byUsername map[string]record.Address
	byAddress  map[record.Address]string
}

func newNames(accounts []record.Account) *names {
	n := &names{
		byUsername: make(map[string]record.Address, len(accounts)),
		byAddress:  make(map[record.Address]string, len(accounts)),
	}
	for _, a := range accounts {
		n.byUsername[a.Username] = a.Address
		n.byAddress[a.Address] = a.Username
	}
	return n
}

// resolve accepts a username or an address in any case.
func (n *names) resolve(s string) (record.Address, error) {
	if s == "" {
		return "", nil
	}
	if a, ok := n.byUsername[record.NormalizeUsername(s)]; ok {
		return a, nil
	}
	a, err := record.NormalizeAddress(s)
	if err != nil {
		return "", fmt.Errorf("unknown player %q", s)
	}
	return a, nil
}

// label is the username of a, or its lowercase address. Checksum case
// is left out so golden files stay writable by hand.
func (n *names) label(a record.Address) string {
	if u, ok := n.byAddress[a]; ok {
		return u
	}
	return strings.ToLower(string(a))
}

func (n *names) labels(as []record.Address) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = n.label(a)
	}
	return out
}
