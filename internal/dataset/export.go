package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/moritamori/machimap/internal/model"
)

// WriteCSV writes a result set with the config's columns plus the Lat, Lng
// and MapURL fields. Both export paths (TUI and headless query) go through
// here so their output cannot drift apart.
func WriteCSV(w io.Writer, cfg Config, results []model.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(cfg.Columns)+3)
	for _, c := range cfg.Columns {
		header = append(header, c.Title)
	}
	header = append(header, "Lat", "Lng", "MapURL")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		rec := make([]string, 0, len(header))
		for _, c := range cfg.Columns {
			rec = append(rec, c.Value(r))
		}
		lat, lng := "", ""
		if r.HasCoords {
			lat = fmt.Sprintf("%.6f", r.Lat())
			lng = fmt.Sprintf("%.6f", r.Lng())
		}
		rec = append(rec, lat, lng, r.MapURL)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
