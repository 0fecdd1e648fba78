package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seedforge/seedforge/internal/config"
	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/depgraph"
	"github.com/seedforge/seedforge/internal/export"
	"github.com/seedforge/seedforge/internal/filler"
)

type schemaLoadedMsg struct{ s *ddl.Schema }
type tableProgressMsg struct {
	tableName string
	rowsDone  int
	rowsTotal int
	status    TableStatus
}
type generateDoneMsg struct {
	totalRows int
	duration  time.Duration
}
type generateErrMsg struct{ err error }
type previewReadyMsg struct {
	rows [][]string
	cols []string
}
type errMsg struct{ err error }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "Q" {
			return m, tea.Quit
		}
		switch m.ActiveTab {
		case TabGenerate:
			return m.handleGenerateKey(msg)
		case TabPreview:
			return m.handlePreviewKey(msg)
		case TabRuns:
			return m.handleRunsKey(msg)
		case TabHelp:
			return m.handleHelpKey(msg)
		}

	case tea.MouseMsg:
		if m.ActiveTab == TabPreview {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				if m.PreviewScroll > 0 {
					m.PreviewScroll--
				}
			case tea.MouseButtonWheelDown:
				if m.PreviewScroll < len(m.PreviewRows)-1 {
					m.PreviewScroll++
				}
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.IsRunning {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case schemaLoadedMsg:
		names := msg.s.Names()
		m.Progress = make([]TableProgress, len(names))
		for i, name := range names {
			m.Progress[i] = TableProgress{Name: name, Status: StatusWaiting, RowsTotal: m.Config.Rows}
		}
		m.StatusMsg = fmt.Sprintf("Schema loaded → %d tables", len(names))
		m.StatusKind = "success"

	case tableProgressMsg:
		for i, p := range m.Progress {
			if p.Name == msg.tableName {
				m.Progress[i].RowsDone = msg.rowsDone
				m.Progress[i].RowsTotal = msg.rowsTotal
				m.Progress[i].Status = msg.status
				break
			}
		}
		cmds = append(cmds, m.Spinner.Tick)

	case generateDoneMsg:
		m.IsRunning = false
		m.FinishTime = time.Now()
		m.TotalRows = msg.totalRows
		for i := range m.Progress {
			if m.Progress[i].RowsDone < m.Progress[i].RowsTotal {
				m.Progress[i].Status = StatusUnderfilled
			} else {
				m.Progress[i].Status = StatusDone
			}
		}
		m.StatusMsg = fmt.Sprintf("✓ Done in %s → %d rows generated", msg.duration.Round(time.Second), msg.totalRows)
		m.StatusKind = "success"
		m.Runs = append([]RunEntry{{
			Timestamp:    time.Now(),
			SchemaFile:   m.GetSchemaPath(),
			Format:       m.GetFormat(),
			TablesFilled: len(m.Progress),
			TotalRows:    msg.totalRows,
			Duration:     msg.duration,
			Success:      true,
		}}, m.Runs...)

	case generateErrMsg:
		m.IsRunning = false
		m.FinishTime = time.Now()
		m.Err = msg.err
		m.StatusMsg = fmt.Sprintf("✗ Error: %v", msg.err)
		m.StatusKind = "error"
		m.Runs = append([]RunEntry{{
			Timestamp:  time.Now(),
			SchemaFile: m.GetSchemaPath(),
			Format:     m.GetFormat(),
			Success:    false,
			ErrMsg:     msg.err.Error(),
		}}, m.Runs...)

	case previewReadyMsg:
		m.PreviewRows = msg.rows
		m.PreviewCols = msg.cols
		m.PreviewLoading = false
		m.StatusMsg = "Preview ready"
		m.StatusKind = "success"

	case errMsg:
		m.StatusMsg = fmt.Sprintf("✗ %v", msg.err)
		m.StatusKind = "error"
	}

	for i := range m.Fields {
		var cmd tea.Cmd
		m.Fields[i], cmd = m.Fields[i].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleGenerateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg.String() {
	case "tab":
		m = m.blurAllFields()
		m.ActiveTab = Tab((int(m.ActiveTab) + 1) % 4)
		return m, nil
	case "shift+tab":
		m = m.blurAllFields()
		m.ActiveTab = Tab((int(m.ActiveTab) + 3) % 4)
		return m, nil
	case "!":
		m = m.blurAllFields()
		m.ActiveTab = TabGenerate
		return m, nil
	case "@":
		m = m.blurAllFields()
		m.ActiveTab = TabPreview
		return m, nil
	case "#":
		m = m.blurAllFields()
		m.ActiveTab = TabRuns
		return m, nil
	case "$":
		m = m.blurAllFields()
		m.ActiveTab = TabHelp
		return m, nil
	case "I", "J":
		if !m.anyFieldFocused() {
			m.FocusedField = 0
			m.Fields[0].Focus()
			return m, textinput.Blink
		}
		m.Fields[m.FocusedField].Blur()
		m.FocusedField = (m.FocusedField + 1) % len(m.Fields)
		m.Fields[m.FocusedField].Focus()
		return m, textinput.Blink
	case "L", "K":
		if !m.anyFieldFocused() {
			return m, nil
		}
		m.Fields[m.FocusedField].Blur()
		m.FocusedField = (m.FocusedField + len(m.Fields) - 1) % len(m.Fields)
		m.Fields[m.FocusedField].Focus()
		return m, textinput.Blink
	case "esc":
		m = m.blurAllFields()
		return m, nil
	case "enter":
		if m.IsRunning {
			return m, nil
		}
		m = m.blurAllFields()
		return m.startGenerating()
	}
	if m.anyFieldFocused() {
		var cmd tea.Cmd
		m.Fields[m.FocusedField], cmd = m.Fields[m.FocusedField].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.ActiveTab = Tab((int(m.ActiveTab) + 1) % 4)
	case "shift+tab":
		m.ActiveTab = Tab((int(m.ActiveTab) + 3) % 4)
	case "!":
		m.ActiveTab = TabGenerate
	case "@":
		m.ActiveTab = TabPreview
	case "#":
		m.ActiveTab = TabRuns
	case "$":
		m.ActiveTab = TabHelp
	case "J":
		if m.PreviewScroll < len(m.PreviewRows)-1 {
			m.PreviewScroll++
		}
	case "K":
		if m.PreviewScroll > 0 {
			m.PreviewScroll--
		}
	case "g":
		m.PreviewScroll = 0
	case "G":
		if len(m.PreviewRows) > 0 {
			m.PreviewScroll = len(m.PreviewRows) - 1
		}
	case "enter":
		return m.startPreview()
	}
	return m, nil
}

func (m Model) handleRunsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.ActiveTab = Tab((int(m.ActiveTab) + 1) % 4)
	case "shift+tab":
		m.ActiveTab = Tab((int(m.ActiveTab) + 3) % 4)
	case "!":
		m.ActiveTab = TabGenerate
	case "@":
		m.ActiveTab = TabPreview
	case "#":
		m.ActiveTab = TabRuns
	case "$":
		m.ActiveTab = TabHelp
	case "J":
		if m.RunsScroll < len(m.Runs)-1 {
			m.RunsScroll++
		}
	case "K":
		if m.RunsScroll > 0 {
			m.RunsScroll--
		}
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.ActiveTab = Tab((int(m.ActiveTab) + 1) % 4)
	case "shift+tab":
		m.ActiveTab = Tab((int(m.ActiveTab) + 3) % 4)
	case "!":
		m.ActiveTab = TabGenerate
	case "@":
		m.ActiveTab = TabPreview
	case "#":
		m.ActiveTab = TabRuns
	case "$":
		m.ActiveTab = TabHelp
	}
	return m, nil
}

func (m Model) startGenerating() (Model, tea.Cmd) {
	m.IsRunning = true
	m.StartTime = time.Now()
	m.FinishTime = time.Time{}
	m.TotalRows = 0
	m.Err = nil
	m.StatusMsg = "Starting generation pipeline..."
	m.StatusKind = "info"

	schemaPath := m.GetSchemaPath()
	outPath := m.GetOutPath()
	format := m.GetFormat()
	rows, _ := strconv.Atoi(m.GetRows())
	if rows <= 0 {
		rows = 100
	}

	return m, tea.Batch(
		m.Spinner.Tick,
		func() tea.Msg {
			return runGeneratePipeline(schemaPath, outPath, format, rows)
		},
	)
}

func runGeneratePipeline(schemaPath, outPath, format string, numRows int) tea.Msg {
	start := time.Now()

	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return generateErrMsg{err: fmt.Errorf("read schema file: %w", err)}
	}
	schema, _, err := ddl.Parse(string(content))
	if err != nil {
		return generateErrMsg{err: fmt.Errorf("parse schema: %w", err)}
	}
	plan, err := depgraph.Build(schema)
	if err != nil {
		return generateErrMsg{err: fmt.Errorf("build dependency plan: %w", err)}
	}

	cf := config.Default()
	cf.NumRows = numRows
	resolver := config.NewResolver(cf)

	res, err := filler.Run(context.Background(), schema, plan, filler.Config{
		NumRows:  numRows,
		Budgets:  resolver.Budgets(),
		Resolver: resolver,
	})
	if err != nil {
		return generateErrMsg{err: fmt.Errorf("generate: %w", err)}
	}

	var order []string
	for _, level := range plan.Levels {
		order = append(order, level.Tables...)
	}

	totalRows := 0
	for _, gt := range res.Tables {
		totalRows += len(gt.Rows)
	}

	switch format {
	case "csv":
		err = export.CSV(outPath, order, res.Tables)
	case "json":
		err = export.JSON(outPath, order, res.Tables)
	default:
		err = export.SQL(outPath, order, res.Tables)
	}
	if err != nil {
		return generateErrMsg{err: fmt.Errorf("export: %w", err)}
	}

	return generateDoneMsg{totalRows: totalRows, duration: time.Since(start)}
}

func (m Model) startPreview() (Model, tea.Cmd) {
	m.PreviewLoading = true
	m.StatusMsg = "Generating preview rows..."
	m.StatusKind = "info"

	schemaPath := m.GetSchemaPath()

	return m, func() tea.Msg {
		content, err := os.ReadFile(schemaPath)
		if err != nil {
			return errMsg{err: err}
		}
		schema, _, err := ddl.Parse(string(content))
		if err != nil {
			return errMsg{err: err}
		}
		names := schema.Names()
		if len(names) == 0 {
			return errMsg{err: fmt.Errorf("no tables found")}
		}

		plan, err := depgraph.Build(schema)
		if err != nil {
			return errMsg{err: err}
		}
		cf := config.Default()
		cf.NumRows = 5
		resolver := config.NewResolver(cf)
		res, err := filler.Run(context.Background(), schema, plan, filler.Config{
			NumRows:  5,
			Budgets:  resolver.Budgets(),
			Resolver: resolver,
		})
		if err != nil {
			return errMsg{err: err}
		}

		gt, ok := res.Tables[names[0]]
		if !ok || len(gt.Rows) == 0 {
			return errMsg{err: fmt.Errorf("%s produced no rows", names[0])}
		}
		rows := make([][]string, len(gt.Rows))
		for ri, row := range gt.Rows {
			vals := make([]string, len(gt.Columns))
			for i, c := range gt.Columns {
				vals[i] = row[c].String()
			}
			rows[ri] = vals
		}
		return previewReadyMsg{rows: rows, cols: gt.Columns}
	}
}
