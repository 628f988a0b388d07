package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/hairizuan-noorazman/user-registry/listview"
)

func printJSON(w io.Writer, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

func printRawJSON(w io.Writer, body []byte) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		fmt.Fprintln(w, string(body))
		return
	}
	printJSON(w, raw)
}

func printTable(out io.Writer, headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// printUserTable renders a listview table with sort markers on the headers
// and a footer row.
func printUserTable(out io.Writer, t listview.Table) {
	if t.Empty {
		printMessage(out, "No Data")
		return
	}

	headers := make([]string, len(t.Columns))
	footer := make([]string, len(t.Columns))
	hasFooter := false
	for i, c := range t.Columns {
		headers[i] = strings.ToUpper(c.Header) + sortMarker(c)
		footer[i] = c.Footer
		if c.Footer != "" {
			hasFooter = true
		}
	}

	rows := make([][]string, 0, len(t.Rows)+1)
	for _, r := range t.Rows {
		rows = append(rows, r.Cells)
	}
	if hasFooter {
		rows = append(rows, footer)
	}
	printTable(out, headers, rows)
}

func sortMarker(c listview.Column) string {
	switch c.Direction {
	case listview.Ascending:
		return " ^"
	case listview.Descending:
		return " v"
	default:
		return ""
	}
}

func printMessage(w io.Writer, msg string) {
	fmt.Fprintln(w, msg)
}
