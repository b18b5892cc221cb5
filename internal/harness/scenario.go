package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arcade/internal/pin"
	"github.com/roach88/arcade/internal/source"
)

// Scenario is one record set, optional follow-up updates, and the
// expectations on the views derived from them.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	Config Config `yaml:"config,omitempty"`

	// Data is loaded before the first refresh pass.
	Data source.Dataset `yaml:"data"`

	// Updates are appended to Data one at a time, each followed by a
	// refresh pass.
	Updates []source.Dataset `yaml:"updates,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Config holds the engine settings a scenario may override.
type Config struct {
	// Cap is the leaderboard display cap. Zero uses the engine default.
	Cap int `yaml:"cap,omitempty"`

	// PinLimit caps featured achievements. Zero uses pin.DefaultLimit.
	PinLimit int `yaml:"pin_limit,omitempty"`

	// PinFallback features rarest completions when nothing is pinned.
	// Unset means true.
	PinFallback *bool `yaml:"pin_fallback,omitempty"`
}

func (c Config) policy() pin.Policy {
	p := pin.DefaultPolicy()
	if c.PinLimit > 0 {
		p.Limit = c.PinLimit
	}
	if c.PinFallback != nil {
		p.FallbackRarest = *c.PinFallback
	}
	return p
}

// Assertion checks one derived view. Which fields apply depends on Type.
type Assertion struct {
	Type string `yaml:"type"`

	Project     string `yaml:"project,omitempty"`
	Player      string `yaml:"player,omitempty"`
	Viewer      string `yaml:"viewer,omitempty"`
	Achievement string `yaml:"achievement,omitempty"`
	Start       int64  `yaml:"start,omitempty"`
	Cap         int    `yaml:"cap,omitempty"`
	Following   bool   `yaml:"following,omitempty"`

	// Expect is a subset of item fields (item).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Earnings is the expected total (earnings).
	Earnings *uint64 `yaml:"earnings,omitempty"`

	// Achievements are expected ids in order (pinned, feed).
	Achievements []string `yaml:"achievements,omitempty"`

	// Players are expected players in order (leaderboard, following).
	Players []string `yaml:"players,omitempty"`

	// Ranks parallel Players (leaderboard). Optional.
	Ranks []int `yaml:"ranks,omitempty"`

	// Keys are expected project/id keys (missing).
	Keys []string `yaml:"keys,omitempty"`
}

// Assertion type constants.
const (
	AssertItem        = "item"
	AssertEarnings    = "earnings"
	AssertPinned      = "pinned"
	AssertLeaderboard = "leaderboard"
	AssertFeed        = "feed"
	AssertFollowing   = "following"
	AssertMissing     = "missing"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so a typo cannot silently disable an assertion.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Config.Cap < 0 || s.Config.PinLimit < 0 {
		return fmt.Errorf("config: cap and pin_limit must be non-negative")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	need := func(ok bool, field string) error {
		if ok {
			return nil
		}
		return fmt.Errorf("assertions[%d]: %s is required for %s", index, field, a.Type)
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertItem:
		if err := need(a.Project != "" && a.Player != "" && a.Achievement != "", "project, player and achievement"); err != nil {
			return err
		}
		return need(len(a.Expect) > 0, "expect")
	case AssertEarnings:
		if err := need(a.Player != "", "player"); err != nil {
			return err
		}
		return need(a.Earnings != nil, "earnings")
	case AssertPinned, AssertFollowing:
		return need(a.Player != "", "player")
	case AssertLeaderboard:
		if len(a.Ranks) > 0 && len(a.Ranks) != len(a.Players) {
			return fmt.Errorf("assertions[%d]: ranks must parallel players", index)
		}
		return need(!a.Following || a.Viewer != "", "viewer")
	case AssertFeed:
		return need(a.Player != "" && a.Start > 0, "player and start")
	case AssertMissing:
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
}
