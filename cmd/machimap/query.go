package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/moritamori/machimap/internal/dataset"
	"github.com/moritamori/machimap/internal/engine/filter"
	"github.com/moritamori/machimap/internal/engine/source"
	"github.com/moritamori/machimap/internal/model"
)

// runQuery loads one config's dataset, applies filters from flags, and
// prints the result set (or writes it as CSV).
func runQuery(args []string) error {
	var configID, search, where, tags, csvPath string

	fs := flag.NewFlagSet("query", flag.ExitOnError)
	fs.StringVar(&configID, "config", "", "Config ID: tokyo, kyoto or hachipay (required)")
	fs.StringVar(&search, "search", "", "Keyword for the search filter")
	fs.StringVar(&where, "where", "", "Semicolon-separated id=value pairs for select/threshold filters")
	fs.StringVar(&tags, "tags", "", "Comma-separated tags (all must match)")
	fs.StringVar(&csvPath, "csv", "", "Write results to this CSV file instead of stdout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: machimap query [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  machimap query -config tokyo -search ramen\n")
		fmt.Fprintf(os.Stderr, "  machimap query -config kyoto -where \"category=Cafe;max_price=1000\" -csv out.csv\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if configID == "" {
		return fmt.Errorf("-config is required")
	}
	cfg, ok := dataset.ByID(configID)
	if !ok {
		var ids []string
		for _, c := range dataset.All() {
			ids = append(ids, c.ID)
		}
		return fmt.Errorf("unknown config %q (have: %s)", configID, strings.Join(ids, ", "))
	}

	st := filter.NewState()
	if search != "" {
		for _, d := range cfg.Filters {
			if d.Kind == filter.Search {
				st.SetValue(d.ID, search)
				break
			}
		}
	}
	for _, pair := range strings.Split(where, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("malformed -where entry %q, want id=value", pair)
		}
		id = strings.TrimSpace(id)
		if !hasDecl(cfg, id) {
			return fmt.Errorf("config %q has no filter %q", cfg.ID, id)
		}
		st.SetValue(id, strings.TrimSpace(value))
	}
	if tags != "" {
		decl, ok := cfg.TagsDecl()
		if !ok {
			return fmt.Errorf("config %q has no tag filter", cfg.ID)
		}
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				st.ToggleTag(decl.ID, t)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := source.NewFetcher().Fetch(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Source, err)
	}
	full := cfg.Normalize(data)
	results := filter.Evaluate(full, cfg.Filters, st)

	if csvPath != "" {
		if err := writeCSV(csvPath, cfg, results); err != nil {
			return err
		}
		fmt.Printf("%d of %d shown, written to %s\n", len(results), len(full), csvPath)
		return nil
	}

	for _, r := range results {
		line := []string{r.Title}
		for _, c := range cfg.Columns {
			if c.Link {
				continue
			}
			line = append(line, c.Value(r))
		}
		fmt.Println(strings.Join(line, "  |  "))
	}
	fmt.Printf("%d of %d shown\n", len(results), len(full))
	return nil
}

func hasDecl(cfg dataset.Config, id string) bool {
	for _, d := range cfg.Filters {
		if d.ID == id {
			return true
		}
	}
	return false
}

func writeCSV(path string, cfg dataset.Config, results []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return dataset.WriteCSV(f, cfg, results)
}
