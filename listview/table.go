package listview

import (
	"strconv"

	"github.com/hairizuan-noorazman/user-registry/user"
)

// Column describes one table column as the presentation layer renders it.
type Column struct {
	ID        string    `json:"id"`
	Header    string    `json:"header"`
	Sortable  bool      `json:"sortable"`
	Direction Direction `json:"direction"`
	Icon      string    `json:"icon,omitempty"`
	Footer    string    `json:"footer,omitempty"`
}

// Row is one rendered record. Cells line up with the table's columns.
type Row struct {
	UID   string   `json:"uid"`
	Cells []string `json:"cells"`
}

// Table is the rendered form of a derived list.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
	// Empty is set when there is nothing to show ("No Data").
	Empty bool `json:"empty"`
}

type columnDef struct {
	id     string
	header string
	field  Field // empty when the column is not sortable
	cell   func(user.User) string
}

var columnDefs = []columnDef{
	{id: "uid", header: "UID", cell: func(u user.User) string { return u.UID }},
	{id: "name", header: "Name", field: FieldName, cell: func(u user.User) string { return u.Name }},
	{id: "email", header: "Email", field: FieldEmail, cell: func(u user.User) string { return u.Email }},
	{id: "dob", header: "DOB", field: FieldDOB, cell: formatDOB},
	{id: "isActive", header: "Status", field: FieldStatus, cell: func(u user.User) string { return u.IsActive.Label() }},
	{id: "gender", header: "Gender", field: FieldGender, cell: func(u user.User) string { return string(u.Gender) }},
	{id: "age", header: "Age", field: FieldAge, cell: func(u user.User) string { return strconv.Itoa(u.Age) }},
	{id: "country", header: "Country", field: FieldCountry, cell: func(u user.User) string { return u.Country }},
}

// SortIcon names the header icon for a direction.
func SortIcon(d Direction) string {
	switch d {
	case Ascending:
		return "sort-down"
	case Descending:
		return "sort-up"
	default:
		return "sort"
	}
}

// BuildTable renders an already derived list. The age column's footer is the
// sum of the displayed ages.
func BuildTable(users []user.User, spec SortSpec) Table {
	t := Table{
		Columns: make([]Column, len(columnDefs)),
		Rows:    make([]Row, 0, len(users)),
		Empty:   len(users) == 0,
	}

	for i, def := range columnDefs {
		col := Column{ID: def.id, Header: def.header}
		if def.field != "" {
			col.Sortable = true
			col.Direction = spec.Direction(def.field)
			col.Icon = SortIcon(col.Direction)
		}
		if def.id == "age" && !t.Empty {
			col.Footer = strconv.Itoa(TotalAge(users))
		}
		t.Columns[i] = col
	}

	for _, u := range users {
		cells := make([]string, len(columnDefs))
		for i, def := range columnDefs {
			cells[i] = def.cell(u)
		}
		t.Rows = append(t.Rows, Row{UID: u.UID, Cells: cells})
	}
	return t
}

// TotalAge sums the ages of users.
func TotalAge(users []user.User) int {
	total := 0
	for _, u := range users {
		total += u.Age
	}
	return total
}

func formatDOB(u user.User) string {
	if u.DOB.IsZero() {
		return "-"
	}
	return u.DOB.UTC().Format("02-01-2006")
}
