package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ansiReset = "\x1b[0m"
	ansiBlue  = "\x1b[34m"
	ansiGreen = "\x1b[32m"
)

// Console writes human-readable report sections.
type Console struct {
	w        io.Writer
	colorize bool
	printer  *message.Printer
	title    cases.Caser
	err      error
}

// NewConsole returns a Console writing to w. Colour is used only when w is a
// terminal.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:        w,
		colorize: ShouldColorize(w),
		printer:  message.NewPrinter(language.English),
		title:    cases.Title(language.English),
	}
}

// ShouldColorize reports whether w is an interactive terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Err returns the first write error.
func (c *Console) Err() error { return c.err }

func (c *Console) println(s string) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintln(c.w, s)
}

// Label turns a column name such as "Diet_type" into "Diet Type".
func (c *Console) Label(column string) string {
	return c.title.String(strings.ReplaceAll(column, "_", " "))
}

// Count formats n with thousands separators.
func (c *Console) Count(n int) string {
	return c.printer.Sprintf("%d", n)
}

// Section prints a section heading.
func (c *Console) Section(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if c.colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	c.println("")
	c.println(line)
	c.println(rule)
}

// Field prints a "label: value" line.
func (c *Console) Field(label, value string) {
	if c.colorize {
		value = ansiGreen + value + ansiReset
	}
	c.println(fmt.Sprintf("  %-22s %s", label+":", value))
}

// Table prints t.
func (c *Console) Table(t Table) {
	if out := t.Render(); out != "" {
		c.println(out)
	}
}

// Summary prints every section of s.
func (c *Console) Summary(s *Summary) error {
	group := c.Label(s.GroupColumn)

	c.Section("Dataset")
	c.Field("Input", s.Input)
	c.Field("Rows", c.Count(s.Rows))
	c.Field("Columns", c.Count(len(s.Columns)))
	if !s.StartedAt.IsZero() {
		c.Field("Started", s.StartedAt.Format("2006-01-02 15:04:05"))
	}

	c.Section("Data Cleaning")
	c.Table(c.cleaningTable(s))

	c.Section("Average Values by " + group)
	c.Table(c.meansTable(s, group))

	c.Section(fmt.Sprintf("Top %d by %s per %s", s.TopK.K, s.TopK.Column, group))
	c.Table(c.topKTable(s, group))

	c.Section(fmt.Sprintf("%s with Highest %s", group, s.Max.Metric))
	c.Field(group, s.Max.Group)
	c.Field("Average", formatFixed(s.Max.Value))

	c.Section(fmt.Sprintf("Most Common %s per %s", c.Label(s.CategoryColumn), group))
	c.Table(c.modesTable(s, group))

	if len(s.Ratios) > 0 {
		c.Section("Derived Metrics")
		rows := make([][]string, len(s.Ratios))
		for i, r := range s.Ratios {
			rows[i] = []string{r.Name, r.Numerator + " / " + r.Denominator, c.Count(r.Missing)}
		}
		c.Table(Table{
			Headers: []string{"Column", "Formula", "Missing"},
			Rows:    rows,
			Aligns:  []Alignment{AlignLeft, AlignLeft, AlignRight},
		})
	}
	if s.ProcessedCSV != "" {
		c.Field("Processed CSV", s.ProcessedCSV)
	}
	return c.err
}

func (c *Console) cleaningTable(s *Summary) Table {
	rows := make([][]string, 0, len(s.Cleaning))
	for _, st := range s.Cleaning {
		mean := "-"
		if st.Filled > 0 {
			mean = formatFixed(st.Mean)
		}
		rows = append(rows, []string{
			st.Column,
			c.Count(s.MissingBefore[st.Column]),
			c.Count(st.Unparsable),
			c.Count(st.Filled),
			mean,
			c.Count(s.MissingAfter[st.Column]),
		})
	}
	return Table{
		Headers: []string{"Column", "Missing Before", "Unparsable", "Filled", "Fill Mean", "Missing After"},
		Rows:    rows,
		Aligns:  []Alignment{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

func (c *Console) meansTable(s *Summary, group string) Table {
	var headers []string
	aligns := []Alignment{AlignLeft, AlignRight}
	headers = append(headers, group, "Rows")
	if len(s.GroupMeans) > 0 {
		for _, m := range s.GroupMeans[0].Means {
			headers = append(headers, m.Column)
			aligns = append(aligns, AlignRight)
		}
	}
	rows := make([][]string, 0, len(s.GroupMeans))
	for _, g := range s.GroupMeans {
		row := []string{g.Group, c.Count(g.Count)}
		for _, m := range g.Means {
			row = append(row, formatOptional(m.Value))
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows, Aligns: aligns}
}

func (c *Console) topKTable(s *Summary, group string) Table {
	var rows [][]string
	for _, g := range s.TopK.Groups {
		for i, rec := range g.Records {
			rows = append(rows, []string{g.Group, strconv.Itoa(i + 1), rec.Name, formatOptional(rec.Value)})
		}
	}
	return Table{
		Headers: []string{group, "Rank", "Name", s.TopK.Column},
		Rows:    rows,
		Aligns:  []Alignment{AlignLeft, AlignRight, AlignLeft, AlignRight},
	}
}

func (c *Console) modesTable(s *Summary, group string) Table {
	rows := make([][]string, len(s.MostCommon))
	for i, m := range s.MostCommon {
		rows[i] = []string{m.Group, m.Value, c.Count(m.Count)}
	}
	return Table{
		Headers: []string{group, c.Label(s.CategoryColumn), "Count"},
		Rows:    rows,
		Aligns:  []Alignment{AlignLeft, AlignLeft, AlignRight},
	}
}

func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFixed(*v)
}
