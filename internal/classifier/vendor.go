package classifier

import (
	"regexp"
	"strings"
)

// vendorNoise lists the fragments stripped from descriptions when
// deriving a vendor name, applied in order: store numbers, long digit
// runs, then corporate suffixes.
var vendorNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)#\d+`),
	regexp.MustCompile(`(?i)\d{4,}`),
	regexp.MustCompile(`(?i)STORE \d+`),
	regexp.MustCompile(`(?i)LOCATION \d+`),
	regexp.MustCompile(`(?i)LLC`),
	regexp.MustCompile(`(?i)INC`),
	regexp.MustCompile(`(?i)CORP`),
	regexp.MustCompile(`(?i)CO\.?$`),
}

// CleanVendorName reduces a raw description to a display vendor name:
// noise fragments removed, whitespace trimmed, capped at 100
// characters. Used as the fallback when the model does not return a
// vendor of its own.
func CleanVendorName(description string) string {
	vendor := strings.TrimSpace(description)
	for _, re := range vendorNoise {
		vendor = strings.TrimSpace(re.ReplaceAllString(vendor, ""))
	}
	if runes := []rune(vendor); len(runes) > 100 {
		vendor = string(runes[:100])
	}
	return vendor
}
