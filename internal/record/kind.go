package record

import "fmt"

// Kind tags the logical resource a record was read from.
type Kind uint8

const (
	// KindUnknown is the zero value and never valid on a parsed record.
	KindUnknown Kind = iota
	// KindTrophy is a static achievement definition.
	KindTrophy
	// KindProgress is a per-task progress record.
	KindProgress
	// KindSession is a play-session record.
	KindSession
	// KindAccount maps an address to a username.
	KindAccount
	// KindPin is a pin/unpin social event.
	KindPin
	// KindFollow is a follow/unfollow social event.
	KindFollow
	// KindEdition is a registry entry describing one project.
	KindEdition
)

var kindNames = map[Kind]string{
	KindTrophy:   "trophy",
	KindProgress: "progress",
	KindSession:  "session",
	KindAccount:  "account",
	KindPin:      "pin",
	KindFollow:   "follow",
	KindEdition:  "edition",
}

// resourceNames are the field names carrying rows in transport responses.
var resourceNames = map[Kind]string{
	KindTrophy:   "trophies",
	KindProgress: "progressions",
	KindSession:  "playthroughs",
	KindAccount:  "accounts",
	KindPin:      "pins",
	KindFollow:   "follows",
	KindEdition:  "editions",
}

// String returns the short name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Resource returns the response field name holding rows of this kind.
func (k Kind) Resource() string {
	return resourceNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}
