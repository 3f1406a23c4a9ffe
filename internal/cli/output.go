package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// Format selects how command results are printed.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ResolveFormat turns FormatAuto into table output on a terminal and JSON
// everywhere else.
func ResolveFormat(f Format, out io.Writer) (Format, error) {
	switch f {
	case FormatTable, FormatJSON:
		return f, nil
	case FormatAuto, "":
		if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			return FormatTable, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", f)
	}
}

// result is one command's output: v for JSON, header/rows for tables.
type result struct {
	v      any
	header []string
	rows   [][]string
}

func (a *App) print(r result) error {
	if a.format == FormatJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(r.v)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	if len(r.header) > 0 {
		fmt.Fprintln(tw, strings.Join(r.header, "\t"))
	}
	for _, row := range r.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func message(format string, args ...any) result {
	msg := fmt.Sprintf(format, args...)
	return result{v: map[string]string{"result": msg}, rows: [][]string{{msg}}}
}
