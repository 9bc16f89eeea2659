package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/moritamori/machimap/internal/model"
)

// Kind is the closed set of filter control kinds.
type Kind int

const (
	// Search matches a case-folded substring against the joined match fields.
	Search Kind = iota
	// Select matches a field by exact string equality.
	Select
	// Tags requires the record's tag set to be a superset of the active tags.
	Tags
	// MinThreshold passes records whose field is >= the control value.
	// An absent field always fails.
	MinThreshold
	// MaxThreshold passes records whose field is <= the control value.
	// An absent field always passes.
	MaxThreshold
)

// Field names a Record field a declaration reads.
type Field int

const (
	FieldTitle Field = iota
	FieldCategory
	FieldArea
	FieldTags
	FieldRating
	FieldReviews
	FieldMetric
	FieldDescription
	FieldAddress
	FieldTel
)

// Decl is one user-facing filter control.
type Decl struct {
	ID     string
	Label  string
	Kind   Kind
	Fields []Field // match fields for Search; single field otherwise
}

// State holds the current control values. The zero value is all-inactive.
type State struct {
	Values map[string]string   // decl ID -> raw control value
	Tags   map[string][]string // decl ID -> active tags
}

// NewState returns an empty, all-inactive filter state.
func NewState() State {
	return State{Values: map[string]string{}, Tags: map[string][]string{}}
}

// SetValue records a control value; empty string deactivates the control.
func (s *State) SetValue(id, v string) {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	s.Values[id] = v
}

// ToggleTag flips one tag for a multi-select declaration.
func (s *State) ToggleTag(id, tag string) {
	if s.Tags == nil {
		s.Tags = map[string][]string{}
	}
	active := s.Tags[id]
	for i, t := range active {
		if t == tag {
			s.Tags[id] = append(active[:i], active[i+1:]...)
			return
		}
	}
	s.Tags[id] = append(active, tag)
}

// ActiveTags returns the active tag set for a declaration.
func (s State) ActiveTags(id string) []string {
	return s.Tags[id]
}

// TagActive reports whether one tag is currently selected.
func (s State) TagActive(id, tag string) bool {
	for _, t := range s.Tags[id] {
		if t == tag {
			return true
		}
	}
	return false
}

// Evaluate applies every declaration to the full set and returns the records
// passing all active filters, in their original order. Inputs are never
// mutated; inactive controls match everything.
func Evaluate(full []model.Record, decls []Decl, st State) []model.Record {
	result := make([]model.Record, 0, len(full))
	for i := range full {
		r := &full[i]
		ok := true
		for di := range decls {
			if !decls[di].match(r, st) {
				ok = false
				break
			}
		}
		if ok {
			result = append(result, full[i])
		}
	}
	return result
}

func (d *Decl) match(r *model.Record, st State) bool {
	switch d.Kind {
	case Search:
		return d.matchSearch(r, st.Values[d.ID])
	case Select:
		return d.matchSelect(r, st.Values[d.ID])
	case Tags:
		return d.matchTags(r, st.Tags[d.ID])
	case MinThreshold, MaxThreshold:
		return d.matchThreshold(r, st.Values[d.ID])
	}
	return true
}

func (d *Decl) matchSearch(r *model.Record, value string) bool {
	needle := Fold(strings.TrimSpace(value))
	if needle == "" {
		return true
	}
	parts := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		parts = append(parts, stringValue(r, f))
	}
	return strings.Contains(Fold(strings.Join(parts, " ")), needle)
}

func (d *Decl) matchSelect(r *model.Record, value string) bool {
	if value == "" {
		return true
	}
	return d.firstString(r) == value
}

func (d *Decl) matchTags(r *model.Record, active []string) bool {
	for _, t := range active {
		if !r.HasTag(t) {
			return false
		}
	}
	return true
}

// matchThreshold keeps the source's asymmetric absence rule: an absent value
// fails a minimum filter and passes a maximum filter.
func (d *Decl) matchThreshold(r *model.Record, value string) bool {
	limit := model.ParseNum(value)
	if !limit.Valid {
		return true // unparseable or empty control value: inactive
	}
	n := d.firstNum(r)
	if d.Kind == MinThreshold {
		return n.Valid && n.Value >= limit.Value
	}
	return !n.Valid || n.Value <= limit.Value
}

func (d *Decl) firstString(r *model.Record) string {
	if len(d.Fields) == 0 {
		return ""
	}
	return stringValue(r, d.Fields[0])
}

func (d *Decl) firstNum(r *model.Record) model.Num {
	if len(d.Fields) == 0 {
		return model.Num{}
	}
	return numValue(r, d.Fields[0])
}

func stringValue(r *model.Record, f Field) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldCategory:
		return r.Category
	case FieldArea:
		return r.Area
	case FieldTags:
		return strings.Join(r.Tags, " ")
	case FieldDescription:
		return r.Description
	case FieldAddress:
		return r.Address
	case FieldTel:
		return r.Tel
	}
	return ""
}

func numValue(r *model.Record, f Field) model.Num {
	switch f {
	case FieldRating:
		return r.Rating
	case FieldReviews:
		return r.Reviews
	case FieldMetric:
		return r.Metric
	}
	return model.Num{}
}

// Options collects the distinct values of a Select declaration's field across
// the full set, in first-seen order, for populating the control.
func Options(full []model.Record, d Decl) []string {
	seen := make(map[string]bool)
	var opts []string
	for i := range full {
		v := d.firstString(&full[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		opts = append(opts, v)
	}
	return opts
}

// TagOptions collects every tag appearing in the full set, first-seen order.
func TagOptions(full []model.Record) []string {
	seen := make(map[string]bool)
	var tags []string
	for i := range full {
		for _, t := range full[i].Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// Fold lowercases and strips diacritics so substring search is accent- and
// case-insensitive.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(s))
	return result
}
