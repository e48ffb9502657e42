package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// console wraps line-based prompting for the interactive commands
type console struct {
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewScanner(in), out: out}
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// prompt prints a label and reads one trimmed line. The second return is
// false on EOF.
func (c *console) prompt(label string) (string, bool) {
	fmt.Fprintf(c.out, "%s: ", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// readLine reads one trimmed line without a label
func (c *console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// printStats renders a vote-count map in descending order
func (c *console) printStats(stats map[string]int) {
	type row struct {
		answer string
		count  int
	}
	rows := make([]row, 0, len(stats))
	for answer, count := range stats {
		rows = append(rows, row{answer, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].answer < rows[j].answer
	})
	for _, r := range rows {
		plural := "s"
		if r.count == 1 {
			plural = ""
		}
		c.printf("  %-40s %d vote%s", r.answer, r.count, plural)
	}
}
