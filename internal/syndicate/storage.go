package syndicate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/celerix-dev/imperivm/internal/engine"
)

// DefaultNamespace is the store namespace holding all syndicate data.
const DefaultNamespace = "imperivm"

// Schema versions double as bucket names.
const (
	LegacyVersion  = "v1"
	CurrentVersion = "v2"
)

// Keys of the current bucket.
const (
	KeyCandidates = "candidates"
	KeyMembers    = "members"
	KeyActions    = "actions"
	KeyFinances   = "finances"
	KeyWarnings   = "warnings"
	KeyInventory  = "inventory"
	KeyLogs       = "logs"
	KeyClosed     = "closed"
)

// legacyKeys maps the browser-era keys onto the current ones.
var legacyKeys = map[string]string{
	"imp_c": KeyCandidates,
	"imp_m": KeyMembers,
	"imp_a": KeyActions,
	"imp_f": KeyFinances,
	"imp_w": KeyWarnings,
}

// Migrations returns the schema upgrade steps for the syndicate namespace.
func Migrations() []engine.Step {
	return []engine.Step{
		{From: LegacyVersion, To: CurrentVersion, Apply: migrateLegacyKeys},
	}
}

// Migrate upgrades namespace in s to CurrentVersion.
func Migrate(s engine.Store, namespace string) ([]string, error) {
	return engine.Migrate(s, namespace, LegacyVersion, Migrations())
}

// migrateLegacyKeys copies imp_* keys into the current bucket unless that
// bucket already holds data.
func migrateLegacyKeys(s engine.Store, namespace string) error {
	current, err := s.Dump(namespace, CurrentVersion)
	if err != nil && !missing(err) {
		return fmt.Errorf("read current bucket: %w", err)
	}
	if len(current) > 0 {
		return nil
	}

	legacy, err := s.Dump(namespace, LegacyVersion)
	if err != nil {
		if missing(err) {
			return nil
		}
		return fmt.Errorf("read legacy bucket: %w", err)
	}

	moved := make(map[string]any)
	for oldKey, newKey := range legacyKeys {
		if v, ok := legacy[oldKey]; ok {
			moved[newKey] = roundNumbers(v)
		}
	}
	if len(moved) == 0 {
		return nil
	}
	return s.SetMany(namespace, CurrentVersion, moved)
}

// roundNumbers rounds every JSON number in v to the nearest integer. Legacy
// records were written by forms that kept fractional input, while every
// numeric field of the current schema is an integer.
func roundNumbers(v any) any {
	switch t := v.(type) {
	case float64:
		return math.Round(t)
	case float32:
		return math.Round(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t
		}
		return math.Round(f)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = roundNumbers(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = roundNumbers(e)
		}
		return out
	}
	return v
}

func missing(err error) bool {
	return errors.Is(err, engine.ErrNamespaceNotFound) || errors.Is(err, engine.ErrBucketNotFound)
}
