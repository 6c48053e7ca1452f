package valueobject

import (
	"regexp"
	"strings"
)

var (
	pincodeRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	gstinRegex   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panRegex     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscRegex    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	stateRegex   = regexp.MustCompile(`^[0-9]{2}$`)
)

// IsValidPincode checks a 6-digit Indian postal code
func IsValidPincode(s string) bool {
	return pincodeRegex.MatchString(strings.TrimSpace(s))
}

// IsValidGSTIN checks the 15-character GST identification number layout
func IsValidGSTIN(s string) bool {
	return gstinRegex.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValidPAN checks the 10-character permanent account number layout
func IsValidPAN(s string) bool {
	return panRegex.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValidIFSC checks the 11-character bank branch code layout
func IsValidIFSC(s string) bool {
	return ifscRegex.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValidStateCode checks a 2-digit GST state code
func IsValidStateCode(s string) bool {
	return stateRegex.MatchString(s)
}

// StateCodeFromGSTIN returns the state code prefix of a GSTIN
func StateCodeFromGSTIN(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}
