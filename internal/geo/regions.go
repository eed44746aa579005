package geo

import "strings"

// TravelRegions is the fixed keyword vocabulary recognized in free-text
// travel histories. Matching is a case-insensitive substring search.
var TravelRegions = []string{
	"london", "paris", "rome", "madrid", "berlin", "amsterdam", "istanbul",
	"dubai", "cairo", "lagos", "nairobi", "johannesburg",
	"delhi", "mumbai", "bangkok", "singapore", "hong kong", "beijing",
	"shanghai", "tokyo", "seoul", "manila", "jakarta", "sydney",
	"sao paulo", "lima", "bogota", "mexico city", "toronto",
	"new york", "los angeles", "chicago", "houston", "miami", "atlanta",
	"seattle", "san francisco", "boston", "washington", "dallas",
}

// ExtractRegions returns the vocabulary regions mentioned in text, in
// vocabulary order without duplicates. Empty text yields nil.
func ExtractRegions(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var found []string
	for _, region := range TravelRegions {
		if strings.Contains(lower, region) {
			found = append(found, region)
		}
	}
	return found
}
