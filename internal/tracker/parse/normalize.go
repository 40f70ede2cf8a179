package parse

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Marketing and spec noise stripped from every model string before keying.
// Chip-line and sub-brand words (geforce, radeon, rog) count as noise too:
// retailers include them inconsistently for the same physical card.
var strictNoiseTokens = []string{
	"oc", "edition", "gaming", "pro", "rgb", "argb",
	"cpu", "processor",
	"geforce", "radeon", "rog",
	"gddr5", "gddr6", "gddr6x", "gddr7",
	"pcie", "pci-e",
}

// The loose key additionally drops spec words that retailers include
// inconsistently, plus form-factor abbreviations.
var looseNoiseTokens = []string{
	"core", "cores", "thread", "threads", "ghz", "desktop",
	"atx", "matx", "eatx", "itx", "sff",
}

var (
	reCoolerPhrase = regexp.MustCompile(`\bwith(?:\s+\w+){0,3}\s+cooler\b`)
	reCompoundSpec = regexp.MustCompile(`\b\d+(?:\.\d+)?[\s-]*(?:cores?|threads?|ghz)\b`)
	reUnitSuffix   = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:gb|mb|mhz)\b`)
	reCASLatency   = regexp.MustCompile(`\bcl\s?\d+\b`)
	reNonAlnum     = regexp.MustCompile(`[^a-z0-9 ]+`)
	reSpaces       = regexp.MustCompile(`\s+`)

	reStrictNoise = tokenPattern(strictNoiseTokens)
	reLooseNoise  = tokenPattern(looseNoiseTokens)
)

func tokenPattern(tokens []string) *regexp.Regexp {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	// Longest first so "gddr6x" wins over "gddr6" inside the alternation.
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for i, t := range sorted {
		sorted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(sorted, "|") + `)\b`)
}

// NormalizeStrict reduces a model string to its exact-match grouping key.
// Pure and idempotent; an empty input yields an empty key.
func NormalizeStrict(name string) string {
	return normalizeKey(name, false)
}

// NormalizeLoose applies a superset of the strict stripping, removing spec
// words and compound tokens like "8-core" or "4.6ghz".
func NormalizeLoose(name string) string {
	return normalizeKey(name, true)
}

func normalizeKey(name string, loose bool) string {
	if name == "" {
		return ""
	}
	s := strings.ToLower(foldASCII(name))
	if loose {
		s = reCompoundSpec.ReplaceAllString(s, " ")
	}
	s = reCoolerPhrase.ReplaceAllString(s, " ")
	s = reStrictNoise.ReplaceAllString(s, " ")
	if loose {
		s = reLooseNoise.ReplaceAllString(s, " ")
	}
	s = reUnitSuffix.ReplaceAllString(s, "$1")
	s = reCASLatency.ReplaceAllString(s, " ")
	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// foldASCII decomposes typographic characters and drops combining marks so
// names differing only in accents or trademark glyphs key identically.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
