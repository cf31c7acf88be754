package registration

import (
	"regexp"
	"strings"
)

// Two digits, one letter, then four or five digits: 51A12345, 30f1234.
var licensePlateRegex = regexp.MustCompile(`^\d{2}[A-Za-z]\d{4,5}$`)

func NormalizeLicensePlate(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

func ValidLicensePlate(input string) bool {
	return licensePlateRegex.MatchString(strings.TrimSpace(input))
}
