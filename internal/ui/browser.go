package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jjenkins/adressen/internal/table"
)

// DefaultDebounce is the delay between the last keystroke in a filter input
// and the filter being applied
const DefaultDebounce = 250 * time.Millisecond

const (
	tableHeight = 12
	focusTable  = -1
)

// terminal column widths in cells
var cellWidths = map[table.ColumnID]int{
	table.ColPostalCode:  12,
	table.ColDistrict:    26,
	table.ColStreet:      32,
	table.ColHouseNumber: 10,
}

// LoadFunc resolves the address list into a table.DataLoaded or
// table.DataFailed event
type LoadFunc func(ctx context.Context) table.Msg

// Messages
type loadedMsg struct {
	msg table.Msg
}

type filterTickMsg struct {
	seq int
}

// Browser is the terminal address browser
type Browser struct {
	ctx      context.Context
	load     LoadFunc
	model    table.Model
	table    btable.Model
	spinner  spinner.Model
	inputs   []textinput.Model
	inputIDs []table.ColumnID
	focus    int
	debounce time.Duration
	seq      int
	loading  bool
	quitting bool
}

// NewBrowser creates a browser over columns. The address list is loaded
// through load once the program starts.
func NewBrowser(ctx context.Context, load LoadFunc, columns []table.Column, pageSize int, debounce time.Duration) Browser {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		tcols    []btable.Column
		inputs   []textinput.Model
		inputIDs []table.ColumnID
	)
	for _, col := range columns {
		width, ok := cellWidths[col.ID]
		if !ok {
			continue
		}
		tcols = append(tcols, btable.Column{Title: col.Header, Width: width})
		if !col.CanFilter() {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 64
		ti.Width = width
		ti.TextStyle = NormalStyle
		ti.PlaceholderStyle = DimStyle
		inputs = append(inputs, ti)
		inputIDs = append(inputIDs, col.ID)
	}

	t := btable.New(
		btable.WithColumns(tcols),
		btable.WithRows([]btable.Row{}),
		btable.WithFocused(true),
		btable.WithHeight(tableHeight),
	)
	ApplyTableStyles(&t)

	b := Browser{
		ctx:      ctx,
		load:     load,
		model:    table.New(columns, pageSize),
		table:    t,
		spinner:  NewAppSpinner(),
		inputs:   inputs,
		inputIDs: inputIDs,
		focus:    focusTable,
		debounce: debounce,
		loading:  true,
	}
	b.refresh()
	return b
}

// Model returns the table view-model behind the browser
func (b Browser) Model() table.Model {
	return b.model
}

// Init implements tea.Model
func (b Browser) Init() tea.Cmd {
	return tea.Batch(b.spinner.Tick, b.loadCmd())
}

func (b Browser) loadCmd() tea.Cmd {
	ctx, load := b.ctx, b.load
	return func() tea.Msg {
		return loadedMsg{msg: load(ctx)}
	}
}

// Update implements tea.Model
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !b.loading {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd

	case loadedMsg:
		b.loading = false
		b.apply(msg.msg)
		return b, nil

	case filterTickMsg:
		// A newer keystroke supersedes this tick
		if msg.seq != b.seq {
			return b, nil
		}
		filters := make(table.FilterState, len(b.inputIDs))
		for i, id := range b.inputIDs {
			filters[id] = b.inputs[i].Value()
		}
		b.model = b.model.Update(table.SetFiltersMsg{Filters: filters})
		b.refresh()
		return b, nil

	case tea.KeyMsg:
		return b.handleKeyMsg(msg)
	}

	return b, nil
}

func (b Browser) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		b.quitting = true
		return b, tea.Quit
	case "tab":
		return b, b.cycleFocus(1)
	case "shift+tab":
		return b, b.cycleFocus(-1)
	case "pgdown":
		b.apply(table.NextPageMsg{})
		return b, nil
	case "pgup":
		b.apply(table.PrevPageMsg{})
		return b, nil
	case "esc":
		for i := range b.inputs {
			b.inputs[i].SetValue("")
		}
		b.seq++
		b.apply(table.ClearFiltersMsg{})
		return b, nil
	}

	if b.focus == focusTable {
		switch msg.String() {
		case "q":
			b.quitting = true
			return b, tea.Quit
		case "right", "l":
			b.apply(table.NextPageMsg{})
			return b, nil
		case "left", "h":
			b.apply(table.PrevPageMsg{})
			return b, nil
		case "home":
			b.apply(table.GotoPageMsg{Index: 0})
			return b, nil
		case "end":
			b.apply(table.GotoPageMsg{Index: b.model.PageCount() - 1})
			return b, nil
		case "r":
			if b.loading {
				return b, nil
			}
			b.loading = true
			return b, tea.Batch(b.spinner.Tick, b.loadCmd())
		}
		var cmd tea.Cmd
		b.table, cmd = b.table.Update(msg)
		return b, cmd
	}

	before := b.inputs[b.focus].Value()
	var cmd tea.Cmd
	b.inputs[b.focus], cmd = b.inputs[b.focus].Update(msg)
	if b.inputs[b.focus].Value() == before {
		return b, cmd
	}

	b.seq++
	seq := b.seq
	tick := tea.Tick(b.debounce, func(time.Time) tea.Msg {
		return filterTickMsg{seq: seq}
	})
	return b, tea.Batch(cmd, tick)
}

// cycleFocus moves focus through the filter inputs and the table
func (b *Browser) cycleFocus(step int) tea.Cmd {
	slots := len(b.inputs) + 1
	// slot 0 is the table, slot i+1 is input i
	slot := (b.focus + 1 + step + slots) % slots
	b.focus = slot - 1

	for i := range b.inputs {
		b.inputs[i].Blur()
	}
	if b.focus == focusTable {
		b.table.Focus()
		return nil
	}
	b.table.Blur()
	return b.inputs[b.focus].Focus()
}

func (b *Browser) apply(msg table.Msg) {
	page := b.model.PageIndex()
	b.model = b.model.Update(msg)
	b.refresh()
	if b.model.PageIndex() != page {
		b.table.GotoTop()
	}
}

// refresh copies the visible page and the facet counts into the widgets
func (b *Browser) refresh() {
	visible := b.model.VisibleRows()
	rows := make([]btable.Row, 0, len(visible))
	for _, a := range visible {
		var row btable.Row
		for _, col := range b.model.Columns() {
			if _, ok := cellWidths[col.ID]; ok {
				row = append(row, col.Value(a))
			}
		}
		rows = append(rows, row)
	}
	b.table.SetRows(rows)
	// An empty table leaves the cursor at -1.
	switch c := b.table.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		b.table.SetCursor(0)
	case c >= len(rows):
		b.table.SetCursor(len(rows) - 1)
	}

	for i, id := range b.inputIDs {
		b.inputs[i].Placeholder = fmt.Sprintf("Suchen… (%d)", b.model.FacetedUniqueValues(id))
	}
}

// View implements tea.Model
func (b Browser) View() string {
	if b.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Adressenliste Rostock"))
	sb.WriteString("\n")
	sb.WriteString(b.statusLine())
	sb.WriteString("\n\n")

	filters := make([]string, 0, len(b.inputs))
	for i, ti := range b.inputs {
		style := DimStyle
		if i == b.focus {
			style = AccentStyle
		}
		filters = append(filters, style.Render("› ")+ti.View())
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(filters)...))
	sb.WriteString("\n")
	sb.WriteString(BoxStyle.Render(b.table.View()))
	sb.WriteString("\n")

	pager := fmt.Sprintf("Seite %d von %d · %s Treffer",
		b.model.PageIndex()+1, b.model.PageCount(), humanize.Comma(int64(len(b.model.FilteredRows()))))
	sb.WriteString(NormalStyle.Render(pager))
	sb.WriteString("\n")
	if link := b.selectedMapURL(); link != "" {
		sb.WriteString(DimStyle.Render("OSM: ") + AccentStyle.Render(link))
		sb.WriteString("\n")
	}
	sb.WriteString(DimStyle.Render("tab: filter/tabelle · ←/→ pgup/pgdn: seite · esc: filter leeren · r: neu laden · q: beenden"))
	return sb.String()
}

func (b Browser) statusLine() string {
	src := b.model.Source()
	switch {
	case b.loading:
		return b.spinner.View() + " " + NormalStyle.Render("Adressen werden geladen…")
	case !src.Loaded && src.Err != nil:
		return ErrorStyle.Render(fmt.Sprintf("Die Adressenliste konnte nicht geladen werden: %v", src.Err))
	case !src.Loaded:
		return DimStyle.Render("Keine Daten")
	}

	line := fmt.Sprintf("%s Adressen, Stand %s", humanize.Comma(int64(b.model.TotalRows())), humanize.Time(src.CapturedAt))
	if src.Stale {
		line += " (veraltet, Abruf fehlgeschlagen)"
	}
	if src.Err != nil {
		return NormalStyle.Render(line) + " " + ErrorStyle.Render(src.Err.Error())
	}
	return NormalStyle.Render(line)
}

// selectedMapURL is the map search link of the highlighted row
func (b Browser) selectedMapURL() string {
	visible := b.model.VisibleRows()
	i := b.table.Cursor()
	if i < 0 || i >= len(visible) {
		return ""
	}
	return table.MapSearchURL(visible[i])
}

func joinWithGap(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, p)
	}
	return out
}
