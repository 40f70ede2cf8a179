package parse

import (
	"regexp"
	"sort"
	"strings"
)

// Known PC hardware brands. Matched longest-first so "Western Digital" wins
// over "WD". The table is loaded once and never written afterwards.
var knownBrands = []string{
	"AMD", "Intel", "NVIDIA", "Gigabyte", "ASUS", "MSI", "EVGA", "Zotac",
	"Sapphire", "PowerColor", "XFX", "ASRock", "Corsair", "G.Skill",
	"Kingston", "Crucial", "Samsung", "Seagate", "Western Digital", "WD",
	"Noctua", "be quiet!", "Cooler Master", "Lian Li", "Fractal Design",
	"Phanteks", "NZXT", "Seasonic", "Super Flower", "Antec", "Thermaltake",
	"Logitech", "Razer", "SteelSeries", "HyperX", "BenQ", "LG", "Dell",
	"Acer", "ViewSonic", "AOC",
}

type brandPattern struct {
	name string
	re   *regexp.Regexp
}

var brandPatterns []brandPattern

func init() {
	sorted := make([]string, len(knownBrands))
	copy(sorted, knownBrands)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	brandPatterns = make([]brandPattern, 0, len(sorted))
	for _, b := range sorted {
		// Explicit non-alphanumeric boundaries instead of \b: several brands
		// end in punctuation ("be quiet!", "G.Skill"), and "Acer" must never
		// match inside "Racer".
		expr := `(?i)(?:^|[^a-z0-9])(` + regexp.QuoteMeta(b) + `)(?:[^a-z0-9]|$)`
		brandPatterns = append(brandPatterns, brandPattern{name: b, re: regexp.MustCompile(expr)})
	}
}

// ProductName splits a listing name into a canonical brand and the remaining
// model string. Only the first whole-word occurrence of the brand is removed;
// an unrecognized brand leaves the full name as the model.
func ProductName(name string) (brand, model string) {
	for _, bp := range brandPatterns {
		loc := bp.re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		start, end := loc[2], loc[3]
		rest := name[:start] + name[end:]
		rest = strings.TrimSpace(reSpaces.ReplaceAllString(rest, " "))
		return bp.name, rest
	}
	return "", name
}
