package listview

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a name does not identify a sortable field.
var ErrUnknownField = errors.New("unknown sort field")

// ErrUnknownDirection is returned for an unrecognised direction name.
var ErrUnknownDirection = errors.New("unknown sort direction")

// Field identifies a sortable record field. Values are the JSON field names.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldDOB     Field = "dob"
	FieldGender  Field = "gender"
	FieldAge     Field = "age"
	FieldCountry Field = "country"
	FieldStatus  Field = "isActive"
)

// Fields lists every sortable field.
var Fields = []Field{FieldName, FieldEmail, FieldDOB, FieldGender, FieldAge, FieldCountry, FieldStatus}

// ParseField resolves a field name.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Direction is the tri-state sort direction of one field.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

// Next returns the state after one toggle: none, ascending, descending, none.
func (d Direction) Next() Direction {
	switch d {
	case None:
		return Ascending
	case Ascending:
		return Descending
	default:
		return None
	}
}

// String returns "none", "asc" or "desc".
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// ParseDirection resolves "asc", "desc" or "none" (case-insensitive; empty is none).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	case "none", "":
		return None, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SortKey is one entry of a SortSpec.
type SortKey struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// SortSpec maps fields to directions, remembering the order in which fields
// were first toggled. That order is the sort priority: earlier entries win,
// later entries break ties. A field cycled back to None keeps its slot.
//
// The zero value is an empty spec. Methods with a value receiver never mutate
// shared state, so a SortSpec can be copied freely after Clone.
type SortSpec struct {
	entries []SortKey
}

// Direction returns the current direction of f.
func (s SortSpec) Direction(f Field) Direction {
	if i := s.indexOf(f); i >= 0 {
		return s.entries[i].Direction
	}
	return None
}

// Toggle advances f to its next direction and returns it. Other fields are
// left untouched.
func (s *SortSpec) Toggle(f Field) Direction {
	if i := s.indexOf(f); i >= 0 {
		s.entries[i].Direction = s.entries[i].Direction.Next()
		return s.entries[i].Direction
	}
	s.entries = append(s.entries, SortKey{Field: f, Direction: Ascending})
	return Ascending
}

// Keys returns the entries that take part in ordering, in priority order.
func (s SortSpec) Keys() []SortKey {
	var out []SortKey
	for _, e := range s.entries {
		if e.Direction != None {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns every entry, including fields toggled back to None.
func (s SortSpec) Entries() []SortKey {
	return append([]SortKey(nil), s.entries...)
}

// Clone returns an independent copy.
func (s SortSpec) Clone() SortSpec {
	return SortSpec{entries: s.Entries()}
}

// IsZero reports whether no field takes part in ordering.
func (s SortSpec) IsZero() bool {
	return len(s.Keys()) == 0
}

// String formats the active keys as "name:asc,age:desc".
func (s SortSpec) String() string {
	keys := s.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k.Field) + ":" + k.Direction.String()
	}
	return strings.Join(parts, ",")
}

// ParseSort parses the String form. A bare field name means ascending.
// A field may appear only once.
func ParseSort(s string) (SortSpec, error) {
	var spec SortSpec
	if strings.TrimSpace(s) == "" {
		return spec, nil
	}

	for _, part := range strings.Split(s, ",") {
		name, dir, _ := strings.Cut(strings.TrimSpace(part), ":")

		f, err := ParseField(name)
		if err != nil {
			return SortSpec{}, err
		}
		d := Ascending
		if dir != "" {
			if d, err = ParseDirection(dir); err != nil {
				return SortSpec{}, err
			}
		}
		if spec.indexOf(f) >= 0 {
			return SortSpec{}, fmt.Errorf("duplicate sort field %q", f)
		}
		spec.entries = append(spec.entries, SortKey{Field: f, Direction: d})
	}
	return spec, nil
}

// MarshalJSON encodes every entry in priority order.
func (s SortSpec) MarshalJSON() ([]byte, error) {
	entries := s.entries
	if entries == nil {
		entries = []SortKey{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the MarshalJSON form.
func (s *SortSpec) UnmarshalJSON(data []byte) error {
	var entries []SortKey
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	var spec SortSpec
	for _, e := range entries {
		if _, err := ParseField(string(e.Field)); err != nil {
			return err
		}
		if spec.indexOf(e.Field) >= 0 {
			return fmt.Errorf("duplicate sort field %q", e.Field)
		}
		spec.entries = append(spec.entries, e)
	}
	*s = spec
	return nil
}

func (s SortSpec) indexOf(f Field) int {
	for i, e := range s.entries {
		if e.Field == f {
			return i
		}
	}
	return -1
}
