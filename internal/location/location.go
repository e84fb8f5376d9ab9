// Package location derives coarse city keys from free-text addresses so donors and
// NGOs in the same city can be matched without a geocoding service.
package location

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy names accepted by New.
const (
	StrategyCurated = "curated"
	StrategyComma   = "comma"
)

// Classifier maps an address to a lowercase city key. Implementations must be pure.
type Classifier interface {
	Classify(address string) string
}

// New returns the classifier registered under name. An empty name selects the curated list.
func New(name string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyCurated:
		return CuratedClassifier{}, nil
	case StrategyComma:
		return CommaClassifier{}, nil
	default:
		return nil, fmt.Errorf("location: unknown classifier strategy %q", name)
	}
}

// Ordered; earlier patterns win when an address names more than one city.
var knownCities = compile(
	`Mumbai|Bombay`,
	`Delhi|New Delhi`,
	`Bangalore|Bengaluru`,
	`Chennai|Madras`,
	`Hyderabad`,
	`Pune`,
	`Kolkata|Calcutta`,
	`Ahmedabad`,
	`Jaipur`,
	`Surat`,
	`Lucknow`,
	`Kanpur`,
	`Nagpur`,
	`Indore`,
	`Thane`,
	`Bhopal`,
	`Visakhapatnam`,
	`Patna`,
	`Vadodara`,
	`Ghaziabad`,
	`Ludhiana`,
	`Agra`,
	`Nashik`,
	`Faridabad`,
	`Meerut`,
	`Rajkot`,
	`Varanasi`,
	`Srinagar`,
	`Aurangabad`,
	`Dhanbad`,
	`Amritsar`,
	`Allahabad|Prayagraj`,
	`Ranchi`,
	`Howrah`,
	`Coimbatore`,
	`Jabalpur`,
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// CuratedClassifier matches against a closed list of Indian cities and their historic
// names, falling back to the first comma segment for anything else. It copes with
// addresses that carry no commas but never learns new cities.
type CuratedClassifier struct{}

func (CuratedClassifier) Classify(address string) string {
	if address == "" {
		return ""
	}
	for _, re := range knownCities {
		if match := re.FindString(address); match != "" {
			return strings.ToLower(match)
		}
	}
	return firstSegment(address)
}

// CommaClassifier keeps the text before the first comma. Suited to addresses produced
// by a places-autocomplete widget where the city leads; fragile to free-form input.
type CommaClassifier struct{}

func (CommaClassifier) Classify(address string) string {
	return firstSegment(address)
}

func firstSegment(address string) string {
	segment, _, _ := strings.Cut(address, ",")
	return strings.ToLower(strings.TrimSpace(segment))
}

var defaultClassifier Classifier = CuratedClassifier{}

// ExtractCity classifies address with the curated city list.
func ExtractCity(address string) string {
	return defaultClassifier.Classify(address)
}

// SameCity reports whether both addresses resolve to the same non-empty key under c.
func SameCity(c Classifier, a, b string) bool {
	if c == nil {
		c = defaultClassifier
	}
	key := c.Classify(a)
	return key != "" && key == c.Classify(b)
}
