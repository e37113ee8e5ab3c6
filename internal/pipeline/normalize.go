// Package pipeline implements the normalization and metrics-derivation
// pipeline: raw headers are canonicalized, financial cells coerced to
// numbers, monthly columns classified against an as-of date, derived KPIs
// appended, and the result grouped and ranked for reporting.
package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/capital-cli/internal/model"
)

// headerCorrections fixes known malformed headers that survive
// canonicalization. Upstream exports occasionally mis-split words.
var headerCorrections = map[string]string{
	"PROJEC_TID":          model.ColProjectID,
	"PROJECTNAME":         model.ColProjectName,
	"PORTFOLIO_LVL":       model.ColPortfolioLevel,
	"BUS_AREA_ALLOCATION": model.ColBusinessAllocation,
}

var underscoreRunRe = regexp.MustCompile(`_+`)

// CanonicalColumn converts a raw header into canonical form: trimmed,
// space/plus/period/hyphen replaced with underscores, underscore runs
// collapsed, uppercased, and known corrections applied.
func CanonicalColumn(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(" ", "_", "+", "_", ".", "_", "-", "_").Replace(s)
	s = underscoreRunRe.ReplaceAllString(s, "_")
	s = strings.ToUpper(s)
	if fixed, ok := headerCorrections[s]; ok {
		return fixed
	}
	return s
}

// CanonicalColumns canonicalizes a header sequence and resolves collisions.
// Output has the same length and order as the input and contains no
// duplicates: the first occurrence of a name is unsuffixed, repeats get
// "_1", "_2", ... in column order. Never fails; an empty header yields an
// empty token which is deduplicated like any other name.
func CanonicalColumns(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := CanonicalColumn(h)
		n := seen[name]
		seen[name] = n + 1
		if n > 0 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		out[i] = name
	}
	return out
}
