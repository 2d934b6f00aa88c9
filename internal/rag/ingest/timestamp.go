package ingest

import (
	"strings"
	"time"
)

// MetadataTimeLayout is how creation and modification dates are written into chunk metadata.
const MetadataTimeLayout = "02-01-2006 15:04:05"

// FallbackTimestamp is used whenever a document date is missing or unreadable.
var FallbackTimestamp = time.Date(2023, time.September, 8, 0, 0, 0, 0, time.UTC)

// pdf date layouts by number of digits after the D: prefix
var pdfDateLayouts = map[int]string{
	4:  "2006",
	6:  "200601",
	8:  "20060102",
	10: "2006010215",
	12: "200601021504",
	14: "20060102150405",
}

// ParseTimestamp reads a PDF date string such as D:20230908101500+02'00'.
// The timezone suffix is ignored and the wall clock time is kept. It never fails:
// anything it cannot read yields FallbackTimestamp.
func ParseTimestamp(raw string) time.Time {
	s, ok := strings.CutPrefix(strings.TrimSpace(raw), "D:")
	if !ok {
		return FallbackTimestamp
	}

	digits := len(s) - len(strings.TrimLeft(s, "0123456789"))
	layout, ok := pdfDateLayouts[digits]
	if !ok {
		return FallbackTimestamp
	}
	if rest := s[digits:]; rest != "" && !validZone(rest) {
		return FallbackTimestamp
	}

	t, err := time.Parse(layout, s[:digits])
	if err != nil {
		return FallbackTimestamp
	}
	return t
}

func FormatTimestamp(raw string) string {
	return ParseTimestamp(raw).Format(MetadataTimeLayout)
}

// validZone accepts Z, +HH, +HH'mm' and -HH'mm' with or without the trailing quote.
func validZone(z string) bool {
	if z == "Z" || strings.HasPrefix(z, "Z00'00") {
		return true
	}
	if z[0] != '+' && z[0] != '-' {
		return false
	}
	body := strings.ReplaceAll(z[1:], "'", "")
	if len(body) != 2 && len(body) != 4 {
		return false
	}
	return strings.TrimLeft(body, "0123456789") == ""
}
