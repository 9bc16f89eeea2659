package source

import (
	"context"
	"strings"
	"time"
)

// StampUnknown is shown when the "last updated" file is absent or garbled.
const StampUnknown = "Unknown"

var stampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// FormatStamp parses the plain-text "last updated" payload into a display
// string. Anything unparseable degrades to StampUnknown; the stamp is
// cosmetic and must never block a load.
func FormatStamp(data []byte) string {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return StampUnknown
	}
	for _, layout := range stampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			if ts.Hour() == 0 && ts.Minute() == 0 && !strings.ContainsAny(raw, ":") {
				return ts.Format("Jan 2, 2006")
			}
			return ts.Format("Jan 2, 2006 15:04")
		}
	}
	return StampUnknown
}

// FetchStamp loads and formats a config's stamp file. Failures degrade to
// StampUnknown; the error is returned only so callers can log it.
func FetchStamp(ctx context.Context, f *Fetcher, location string) (string, error) {
	if location == "" {
		return StampUnknown, nil
	}
	data, err := f.Fetch(ctx, location)
	if err != nil {
		return StampUnknown, err
	}
	return FormatStamp(data), nil
}
