package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
	"github.com/wippyai/bitpack/transcoder"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	rawStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newExploreCommand(global *globalFlags, stdin io.Reader, stdout io.Writer) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactively pack and unpack records",
		Long: `
Opens a terminal UI listing the records of a schema. Pick one, type field
values and watch the storage word change, or type a raw word and see how it
decodes.
`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			p := tea.NewProgram(newExploreModel(path, global.layout()),
				tea.WithAltScreen(), tea.WithInput(stdin), tea.WithOutput(stdout))
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "schema", "s", "", "schema file (.toml, .yaml or .json)")
	return cmd
}

type modelState int

const (
	stateSelectRecord modelState = iota
	stateEditFields
)

// rawInput is the label of the input editing the whole storage word.
const rawInput = "raw"

type exploreModel struct {
	err      error
	status   error
	schema   *schema.Schema
	rec      *transcoder.Record
	filename string
	opts     layout.Options
	inputs   []textinput.Model
	labels   []string // field label per input, rawInput for the first
	raw      bitpack.Uint128
	selected int
	focusIdx int
	state    modelState
}

func newExploreModel(filename string, opts layout.Options) *exploreModel {
	return &exploreModel{
		filename: filename,
		opts:     opts,
		state:    stateSelectRecord,
	}
}

type loadedMsg struct {
	err    error
	schema *schema.Schema
}

func (m *exploreModel) Init() tea.Cmd {
	return m.loadSchema
}

func (m *exploreModel) loadSchema() tea.Msg {
	s, err := loadSchema(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	if err := layout.NewValidator(m.opts).Schema(s); err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{schema: s}
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateSelectRecord {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectRecord && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectRecord && m.schema != nil && m.selected < len(m.schema.Records)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectRecord:
				if m.schema == nil || len(m.schema.Records) == 0 {
					return m, nil
				}
				if err := m.openRecord(m.schema.Records[m.selected]); err != nil {
					m.status = err
					return m, nil
				}
				m.state = stateEditFields
			case stateEditFields:
				m.apply()
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == stateEditFields && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.inputs) - 1
				}
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}
			return m, nil

		case "ctrl+z":
			if m.state == stateEditFields {
				m.raw = bitpack.Uint128{}
				m.status = nil
				m.refresh()
			}
			return m, nil

		case "esc":
			if m.state == stateEditFields {
				m.state = stateSelectRecord
				m.inputs = nil
				m.rec = nil
				m.status = nil
			}
			return m, nil
		}

	case loadedMsg:
		m.err = msg.err
		m.schema = msg.schema
		return m, nil
	}

	if m.state == stateEditFields {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// openRecord prepares one input for the raw word and one per writable field.
func (m *exploreModel) openRecord(r *schema.RecordSchema) error {
	rec, err := transcoder.NewRecord(r)
	if err != nil {
		return err
	}
	m.rec = rec
	m.raw = bitpack.Uint128{}
	m.status = nil

	m.inputs = []textinput.Model{newInput(rawInput, r.Storage.String())}
	m.labels = []string{rawInput}
	for _, fi := range rec.Info.Fields {
		if !fi.Access.CanWrite() {
			continue
		}
		m.inputs = append(m.inputs, newInput(fi.Label(), fieldTypeString(fi)))
		m.labels = append(m.labels, fi.Label())
	}
	m.focusIdx = 0
	m.inputs[0].Focus()
	m.refresh()
	return nil
}

func newInput(prompt, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt + ": "
	ti.Placeholder = placeholder
	ti.Width = 40
	return ti
}

// apply parses the non-empty inputs and writes them into the raw word. The
// raw input is applied first so field edits land on top of it.
func (m *exploreModel) apply() {
	m.status = nil
	raw := m.raw
	for i, in := range m.inputs {
		text := strings.TrimSpace(in.Value())
		if text == "" {
			continue
		}
		var err error
		if m.labels[i] == rawInput {
			raw, err = parseRaw(text, m.rec.Info.Storage)
		} else {
			raw, err = setField(m.rec, raw, m.labels[i], text)
		}
		if err != nil {
			m.status = err
			return
		}
	}
	m.raw = raw
	m.refresh()
}

// refresh clears the inputs after an edit.
func (m *exploreModel) refresh() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Placeholder = "0x" + m.raw.Big().Text(16)
	}
}

func parseRaw(text string, storage schema.Storage) (bitpack.Uint128, error) {
	v, ok := bitpack.ParseUint128(text)
	if !ok || uint(v.Len()) > storage.Bits() {
		return bitpack.Uint128{}, fmt.Errorf("raw: %q is not a %s", text, storage)
	}
	return v, nil
}

// setField parses text as the value of the named field and stores it. A
// repeated field takes a tuple with one element per instance.
func setField(rec *transcoder.Record, raw bitpack.Uint128, name, text string) (bitpack.Uint128, error) {
	fi, _ := rec.Info.Field(name)
	t := fi.Field.Type
	if fi.Count > 0 {
		elems := make([]*schema.Type, fi.Count)
		for i := range elems {
			elems[i] = t
		}
		t = schema.Tuple(elems...)
	}
	v, err := transcoder.ParseValue(t, text)
	if err != nil {
		return raw, err
	}
	return rec.Set(raw, name, v)
}

func (m *exploreModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}
	if m.schema == nil {
		return "Loading schema..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Bitfield Explorer"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectRecord:
		if len(m.schema.Records) == 0 {
			b.WriteString("The schema declares no records.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a record:\n\n")
		for i, r := range m.schema.Records {
			line := r.Name + " " + typeStyle.Render(r.Storage.String())
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + r.Name + " " + r.Storage.String()))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if m.status != nil {
			b.WriteString("\n" + errorStyle.Render(m.status.Error()) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateEditFields:
		m.viewRecord(&b)
	}
	return b.String()
}

func (m *exploreModel) viewRecord(b *strings.Builder) {
	info := m.rec.Info
	fmt.Fprintf(b, "%s %s\n\n", fieldStyle.Render(info.Record.Name), typeStyle.Render(info.Storage.String()))
	fmt.Fprintf(b, "raw  %s\n", rawStyle.Render("0x"+m.raw.Big().Text(16)))
	fmt.Fprintf(b, "bits %s\n", rawStyle.Render(bitString(m.raw, info.Storage.Bits())))
	fmt.Fprintf(b, "map  %s\n\n", helpStyle.Render(bitMap(info)))

	values, err := m.rec.Fields(m.raw)
	if err != nil {
		b.WriteString(errorStyle.Render(err.Error()) + "\n")
	}
	for _, fv := range values {
		val := "(write-only)"
		if fv.Value != nil {
			val = fv.Value.String()
		}
		fmt.Fprintf(b, "%c %-16s %s %s\n", fieldSymbol(fv.Field.Index), fv.Field.Label(),
			typeStyle.Render(fieldTypeString(fv.Field)), val)
	}
	b.WriteString("\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if m.status != nil {
		b.WriteString("\n" + errorStyle.Render(m.status.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next input • enter apply • ctrl+z clear • esc back"))
}

// bitString renders the low width bits of raw, most significant first, in
// groups of eight.
func bitString(raw bitpack.Uint128, width uint) string {
	var b strings.Builder
	for i := int(width) - 1; i >= 0; i-- {
		if raw.Bit(uint(i)) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		if i > 0 && i%8 == 0 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
