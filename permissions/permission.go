// Package permissions holds the embedded route access table: which roles may call
// each route pattern, and which routes are public.
package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var embedded []byte

// Rule is the access rule for one chi route pattern and method.
// An empty role list admits any authenticated caller.
type Rule struct {
	Roles  []string `json:"permissions"`
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Skip   bool     `json:"skip"`
}

func (r Rule) Allows(role string) bool {
	return len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

type Table struct {
	Endpoints []Rule `json:"endpoints"`
	Skip      bool   `json:"skip"`

	byRoute map[string]Rule
}

func key(path, method string) string {
	return method + " " + path
}

// Find returns the rule for a route pattern, or the zero Rule when none is listed.
func (t *Table) Find(path, method string) Rule {
	return t.byRoute[key(path, method)]
}

func Parse(data []byte) (*Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	table.byRoute = make(map[string]Rule, len(table.Endpoints))
	for _, rule := range table.Endpoints {
		if _, dup := table.byRoute[key(rule.Path, rule.Method)]; dup {
			return nil, fmt.Errorf("duplicate permission for %s", key(rule.Path, rule.Method))
		}

		table.byRoute[key(rule.Path, rule.Method)] = rule
	}

	return &table, nil
}

// Get loads the embedded table. A broken table yields nil, which the RBAC middleware treats as deny-all.
func Get() *Table {
	table, err := Parse(embedded)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(table.Endpoints)).Msg("Loaded embedded permissions")

	return table
}
