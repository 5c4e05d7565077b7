package csvstore

import (
	"fmt"
	"strings"
)

// SchemaPolicy decides how an existing file is handled when new columns show up
type SchemaPolicy string

const (
	// PolicyWiden rewrites the file with the union header and backfills old rows
	PolicyWiden SchemaPolicy = "widen"

	// PolicyLegacy keeps the existing header, appends the new columns' values as
	// extra header-less rows and then appends the full rows in their own order.
	// Earlier versions of the tool wrote files in this layout.
	PolicyLegacy SchemaPolicy = "legacy"
)

// SchemaPolicies lists the accepted policy names
var SchemaPolicies = []SchemaPolicy{PolicyWiden, PolicyLegacy}

// ParseSchemaPolicy converts a flag value into a SchemaPolicy
func ParseSchemaPolicy(value string) (SchemaPolicy, error) {
	policy := SchemaPolicy(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range SchemaPolicies {
		if policy == known {
			return policy, nil
		}
	}
	return "", fmt.Errorf("unknown schema policy %q (expected one of: widen, legacy)", value)
}
