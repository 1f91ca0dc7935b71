package index

import "strings"

// Normalize turns a city name into its lookup key. Only case is folded;
// whitespace and other characters are kept as they are.
func Normalize(city string) string {
	return strings.ToLower(city)
}
