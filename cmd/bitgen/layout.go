package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func newLayoutCommand(global *globalFlags, stdout io.Writer) *cobra.Command {
	var path, record string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the bit layout of records",
		Long: `
Prints one table per record listing where each field sits in the storage
word, followed by a bit map (most significant bit first) in which every bit
shows the symbol of the field occupying it. '.' marks an unused bit and '#'
a bit claimed by more than one field.
`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			s, err := loadSchema(path)
			if err != nil {
				return err
			}
			v := layout.NewValidator(global.layout())
			if err := v.Schema(s); err != nil {
				return err
			}
			records := s.Records
			if record != "" {
				r, ok := s.Record(record)
				if !ok {
					return fmt.Errorf("record %q not found in %s", record, path)
				}
				records = []*schema.RecordSchema{r}
			}
			styled := isTerminal(stdout)
			for i, r := range records {
				info, err := v.Calculator().Record(r)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(stdout)
				}
				renderLayout(stdout, info, styled)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "schema", "s", "", "schema file (.toml, .yaml or .json)")
	cmd.Flags().StringVarP(&record, "record", "r", "", "only print this record")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderLayout writes the field table and bit map of info.
func renderLayout(w io.Writer, info *layout.Info, styled bool) {
	title := fmt.Sprintf("%s: %d of %d bits", info.Record.Name, info.Bits, info.Storage.Bits())
	if styled {
		title = nameStyle.Render(info.Record.Name) + mutedStyle.Render(fmt.Sprintf(": %d of %d bits", info.Bits, info.Storage.Bits()))
	}
	fmt.Fprintln(w, title)

	rows := make([][]string, 0, len(info.Fields))
	for _, fi := range info.Fields {
		rows = append(rows, []string{
			string(fieldSymbol(fi.Index)),
			fi.Label(),
			fieldTypeString(fi),
			bitSpan(fi),
			strconv.FormatUint(uint64(fi.Width), 10),
			fi.Access.String(),
		})
	}

	border := lipgloss.NormalBorder()
	if styled {
		border = lipgloss.RoundedBorder()
	}
	t := table.New().
		Border(border).
		Headers("", "FIELD", "TYPE", "BITS", "WIDTH", "ACCESS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow && styled {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, bitMap(info))
}

func fieldTypeString(fi layout.FieldInfo) string {
	if fi.Count > 0 {
		return fmt.Sprintf("[%s; %d]", fi.Field.Type, fi.Count)
	}
	return fi.Field.Type.String()
}

// bitSpan describes the bits a field covers as a half-open range.
func bitSpan(fi layout.FieldInfo) string {
	span := fmt.Sprintf("%d..%d", fi.Offset, fi.End())
	if fi.Count > 0 && fi.Stride != fi.Width {
		span += " stride " + strconv.FormatUint(uint64(fi.Stride), 10)
	}
	return span
}

const symbols = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func fieldSymbol(i int) byte {
	if i < len(symbols) {
		return symbols[i]
	}
	return '*'
}

// bitMap renders the storage word most significant bit first, in groups of
// eight.
func bitMap(info *layout.Info) string {
	width := info.Storage.Bits()
	cells := make([]byte, width)
	for i := range cells {
		cells[i] = '.'
	}
	for _, fi := range info.Fields {
		n := fi.Count
		if n == 0 {
			n = 1
		}
		for k := 0; k < n; k++ {
			start := fi.ElemOffset(k)
			for b := start; b < start+fi.Width && b < width; b++ {
				if cells[b] == '.' {
					cells[b] = fieldSymbol(fi.Index)
				} else {
					cells[b] = '#'
				}
			}
		}
	}

	var b strings.Builder
	for i := int(width) - 1; i >= 0; i-- {
		b.WriteByte(cells[i])
		if i > 0 && i%8 == 0 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
