package listview

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hairizuan-noorazman/user-registry/user"
)

// MatchMode controls how search text is compared with names and emails.
type MatchMode int

const (
	// MatchCaseInsensitive folds case before the substring test.
	MatchCaseInsensitive MatchMode = iota
	// MatchCaseSensitive uses a literal substring test.
	MatchCaseSensitive
)

// Derive computes the displayed list: the records whose name or email
// contains search, ordered by spec. search is trimmed; an empty search keeps
// every record. The sort is stable and users is not modified.
func Derive(users []user.User, search string, spec SortSpec, mode MatchMode) []user.User {
	out := filter(users, strings.TrimSpace(search), mode)

	if spec.IsZero() {
		return out
	}
	keys := spec.Keys()

	slices.SortStableFunc(out, func(a, b user.User) int {
		for _, k := range keys {
			c := compareField(a, b, k.Field)
			if k.Direction == Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func filter(users []user.User, search string, mode MatchMode) []user.User {
	out := make([]user.User, 0, len(users))
	if search == "" {
		return append(out, users...)
	}

	contains := strings.Contains
	if mode == MatchCaseInsensitive {
		search = strings.ToLower(search)
		contains = func(s, substr string) bool {
			return strings.Contains(strings.ToLower(s), substr)
		}
	}

	for _, u := range users {
		if contains(u.Name, search) || contains(u.Email, search) {
			out = append(out, u)
		}
	}
	return out
}

func compareField(a, b user.User, f Field) int {
	switch f {
	case FieldName:
		return strings.Compare(a.Name, b.Name)
	case FieldEmail:
		return strings.Compare(a.Email, b.Email)
	case FieldDOB:
		return a.DOB.Compare(b.DOB.Time)
	case FieldGender:
		return strings.Compare(string(a.Gender), string(b.Gender))
	case FieldAge:
		return cmp.Compare(a.Age, b.Age)
	case FieldCountry:
		return strings.Compare(a.Country, b.Country)
	case FieldStatus:
		return strings.Compare(string(a.IsActive), string(b.IsActive))
	default:
		return 0
	}
}
