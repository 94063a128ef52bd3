package polycanyon

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxFuzzyDistance caps LookupOptions.FuzzyDistance to keep edit-distance
// scans over the structure roster bounded.
const maxFuzzyDistance = 3

// maxLookupInputLen limits query length before Levenshtein comparisons.
const maxLookupInputLen = 128

// LookupOptions configures structure name lookup.
type LookupOptions struct {
	FuzzyDistance int // Max edit distance for typo tolerance (0 = exact only)
}

// FindStructure resolves a name to a structure. Matching is case-insensitive;
// an exact match always wins over a fuzzy one. With FuzzyDistance > 0 the
// closest name within the edit distance is returned, ties broken by the lower
// structure number.
func (c *Canyon) FindStructure(name string, opts ...LookupOptions) (Structure, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Structure{}, false
	}
	if runes := []rune(name); len(runes) > maxLookupInputLen {
		name = string(runes[:maxLookupInputLen])
	}

	options := LookupOptions{}
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.FuzzyDistance > maxFuzzyDistance {
		options.FuzzyDistance = maxFuzzyDistance
	}

	for _, s := range c.Structures {
		if strings.EqualFold(name, s.Name) {
			return s, true
		}
	}
	if options.FuzzyDistance == 0 {
		return Structure{}, false
	}

	query := strings.ToLower(name)
	best := Structure{}
	bestDist := options.FuzzyDistance + 1
	for _, s := range c.Structures {
		d := levenshtein.ComputeDistance(query, strings.ToLower(s.Name))
		if d < bestDist || (d == bestDist && best.Number > 0 && s.Number < best.Number) {
			best = s
			bestDist = d
		}
	}
	if bestDist > options.FuzzyDistance {
		return Structure{}, false
	}
	return best, true
}
