// Package preview renders cleaned tables for a terminal: a column summary
// (Info), the first rows (Head), and the per-table inspection commands
// printed by the CLI's key listing.
package preview

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"wrangle/internal/table"
	"wrangle/internal/wrangler"
)

// DefaultHeadRows is the row count Head shows when n <= 0.
const DefaultHeadRows = 5

// nullText is how a null cell is rendered.
const nullText = "<null>"

func newWriter() prettytable.Writer {
	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleLight)
	tw.Style().Format = prettytable.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	tw.Style().Options.DrawBorder = false
	return tw
}

// Info writes a column summary of t: row range, and for every column its
// position, name, non-null count and kind, followed by a count per kind.
func Info(w io.Writer, name string, t *table.Table) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", name)
	if n := t.Len(); n == 0 {
		b.WriteString("Rows: 0 entries\n")
	} else {
		fmt.Fprintf(&b, "Rows: %d entries, 0 to %d\n", n, n-1)
	}
	fmt.Fprintf(&b, "Data columns (total %d columns):\n", len(t.Columns))

	tw := newWriter()
	tw.AppendHeader(prettytable.Row{"#", "Column", "Non-Null Count", "Kind"})
	kinds := map[string]int{}
	for i, c := range t.Columns {
		tw.AppendRow(prettytable.Row{i, c.Name, fmt.Sprintf("%d non-null", t.NonNull(i)), c.Kind.String()})
		kinds[c.Kind.String()]++
	}
	b.WriteString(tw.Render())
	b.WriteByte('\n')

	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s(%d)", k, kinds[k])
	}
	fmt.Fprintf(&b, "kinds: %s\n", strings.Join(parts, ", "))

	_, err := io.WriteString(w, b.String())
	return err
}

// Head writes the first n rows of t (DefaultHeadRows when n <= 0) with
// their row index.
func Head(w io.Writer, t *table.Table, n int) error {
	if n <= 0 {
		n = DefaultHeadRows
	}
	if n > t.Len() {
		n = t.Len()
	}

	header := prettytable.Row{""}
	for _, c := range t.Columns {
		header = append(header, c.Name)
	}
	tw := newWriter()
	tw.AppendHeader(header)
	for r := 0; r < n; r++ {
		row := prettytable.Row{r}
		for _, v := range t.Rows[r] {
			if v == nil {
				row = append(row, nullText)
				continue
			}
			row = append(row, table.Format(v))
		}
		tw.AppendRow(row)
	}
	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}

// Boilerplate writes, for every pair, a comment with its short name and the
// command that previews that table.
func Boilerplate(w io.Writer, command string, pairs []wrangler.NamePair) error {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "# %s\n%s -preview %s\n", p.Short, command, strconv.Quote(p.Key))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
