package cli

import (
	coreapp "annotcheck/internal/core/app"
	"annotcheck/internal/engine/annotation"
	"annotcheck/internal/ui/report"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#475569")).
			Padding(0, 1)

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)
)

type diagnosticItem struct {
	diag annotation.Diagnostic
	rel  string
}

func (i diagnosticItem) Title() string {
	return fmt.Sprintf("%s:%d:%d %s", i.rel, i.diag.Location.Line, i.diag.Location.Column, i.diag.Tag)
}

func (i diagnosticItem) Description() string {
	return fmt.Sprintf("%s: %s (%s)", i.diag.Severity, i.diag.Message, i.diag.ClassName)
}

func (i diagnosticItem) FilterValue() string {
	return i.rel + " " + i.diag.Tag + " " + i.diag.ClassName
}

type updateMsg struct {
	result coreapp.Result
}

type model struct {
	list        list.Model
	projectRoot string
	readFile    func(string) ([]byte, error)
	showDetail  bool
	width       int
	height      int
	result      coreapp.Result
	lastUpdate  time.Time
}

func initialModel(projectRoot string) model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Unresolved annotation classes"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	return model{
		list:        l,
		projectRoot: projectRoot,
		readFile:    os.ReadFile,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			m.showDetail = !m.showDetail
			m.resize()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case updateMsg:
		m.result = msg.result
		m.lastUpdate = time.Now()

		items := make([]list.Item, 0, len(msg.result.Diagnostics))
		for _, d := range msg.result.Diagnostics {
			items = append(items, diagnosticItem{diag: d, rel: m.relative(d.Location.File)})
		}
		cmd := m.list.SetItems(items)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h, v := docStyle.GetFrameSize()
	listHeight := m.height - v - 4
	if m.showDetail {
		listHeight -= 2*report.DefaultContextRadius + 5
	}
	m.list.SetSize(m.width-h, max(listHeight, 3))
}

func (m model) relative(path string) string {
	if m.projectRoot == "" {
		return path
	}
	rel, err := filepath.Rel(m.projectRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (m model) selected() (diagnosticItem, bool) {
	item, ok := m.list.SelectedItem().(diagnosticItem)
	return item, ok
}

func (m model) detailView() string {
	item, ok := m.selected()
	if !ok {
		return ""
	}
	content, err := m.readFile(item.diag.Location.File)
	if err != nil {
		return detailStyle.Render(statusStyle.Render("source unavailable: " + err.Error()))
	}
	snippet := report.SourceContext(content, item.diag.Location.Line, report.DefaultContextRadius)
	if snippet.Marker < 0 {
		return detailStyle.Render(statusStyle.Render("line no longer present in " + item.rel))
	}
	lines := make([]string, len(snippet.Lines))
	for i, line := range snippet.Lines {
		if i == snippet.Marker {
			lines[i] = markerStyle.Render("> " + line)
			continue
		}
		lines[i] = "  " + line
	}
	header := warningStyle.Render(item.diag.ClassName) + " " + statusStyle.Render(item.rel)
	return detailStyle.Render(header + "\n" + strings.Join(lines, "\n"))
}

func (m model) View() string {
	res := m.result
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | %d files | %d indexed | %d classes",
		updated, res.Files, res.IndexedFiles, res.Classes))

	var summary string
	if len(res.Diagnostics) == 0 {
		summary = successStyle.Render("No unresolved annotation classes")
	} else {
		summary = warningStyle.Render(fmt.Sprintf("%d unresolved annotation classes", len(res.Diagnostics)))
	}

	view := titleStyle("annotcheck") + "  " + summary + "\n" + status + "\n\n" + m.list.View()
	if m.showDetail {
		view += "\n" + m.detailView()
	}
	return docStyle.Render(view)
}
