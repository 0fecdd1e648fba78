package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
)

type Tab int

const (
	TabGenerate Tab = iota
	TabPreview
	TabRuns
	TabHelp
)

func (t Tab) String() string {
	return []string{
		" Generate ",
		" Preview ",
		" Runs ",
		" Help ",
	}[t]
}

// TableStatus mirrors a table's position in the generation pipeline — there
// is no insert phase here, since the non-goal is never executing against a
// live database.
type TableStatus int

const (
	StatusWaiting TableStatus = iota
	StatusGenerating
	StatusRepairing
	StatusDone
	StatusUnderfilled
)

func (s TableStatus) Label() string {
	return []string{"waiting", "generating", "repairing", "done", "underfilled"}[s]
}

type TableProgress struct {
	Name      string
	Status    TableStatus
	RowsDone  int
	RowsTotal int
}

func (tp TableProgress) Percent() float64 {
	if tp.RowsTotal == 0 {
		return 0
	}
	return float64(tp.RowsDone) / float64(tp.RowsTotal)
}

// RunEntry records one completed generate invocation, shown on the Runs tab.
type RunEntry struct {
	Timestamp    time.Time
	SchemaFile   string
	Format       string
	TablesFilled int
	TotalRows    int
	Duration     time.Duration
	Success      bool
	ErrMsg       string
}

type Config struct {
	SchemaPath string
	OutPath    string
	Format     string
	Rows       int
}

type Model struct {
	ActiveTab    Tab
	Width        int
	Height       int
	Config       Config
	FocusedField int
	Fields       []textinput.Model
	IsRunning    bool
	Progress     []TableProgress
	StartTime    time.Time
	FinishTime   time.Time
	TotalRows    int
	Spinner      spinner.Model
	PreviewTable string
	PreviewRows  [][]string
	PreviewCols  []string
	PreviewLoading bool
	PreviewScroll  int
	Runs           []RunEntry
	RunsScroll     int
	StatusMsg      string
	StatusKind     string
	Err            error
}

func NewModel() Model {
	inputs := make([]textinput.Model, 4)

	inputs[0] = textinput.New()
	inputs[0].Placeholder = "testdata/ecommerce.sql"
	inputs[0].Focus()
	inputs[0].Width = 45
	inputs[0].Prompt = ""

	inputs[1] = textinput.New()
	inputs[1].Placeholder = "seedforge_out"
	inputs[1].Width = 45
	inputs[1].Prompt = ""

	inputs[2] = textinput.New()
	inputs[2].Placeholder = "sql"
	inputs[2].Width = 10
	inputs[2].Prompt = ""

	inputs[3] = textinput.New()
	inputs[3].Placeholder = "100"
	inputs[3].Width = 10
	inputs[3].Prompt = ""
	inputs[3].CharLimit = 6

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		ActiveTab:    TabGenerate,
		FocusedField: 0,
		Fields:       inputs,
		Spinner:      s,
		Config:       Config{Format: "sql", Rows: 100},
		Runs:         []RunEntry{},
		Progress:     []TableProgress{},
		StatusMsg:    "Ready → configure a schema and output then press Enter",
		StatusKind:   "info",
	}
}

func (m Model) GetSchemaPath() string {
	v := m.Fields[0].Value()
	if v == "" {
		return m.Fields[0].Placeholder
	}
	return v
}

func (m Model) GetOutPath() string {
	v := m.Fields[1].Value()
	if v == "" {
		return m.Fields[1].Placeholder
	}
	return v
}

func (m Model) GetFormat() string {
	v := m.Fields[2].Value()
	if v == "" {
		return "sql"
	}
	return v
}

func (m Model) GetRows() string {
	v := m.Fields[3].Value()
	if v == "" {
		return "100"
	}
	return v
}

func (m Model) TotalProgress() float64 {
	if len(m.Progress) == 0 {
		return 0
	}
	total, done := 0, 0
	for _, p := range m.Progress {
		total += p.RowsTotal
		done += p.RowsDone
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func (m Model) ElapsedTime() string {
	if m.StartTime.IsZero() {
		return "0s"
	}
	end := time.Now()
	if !m.FinishTime.IsZero() {
		end = m.FinishTime
	}
	return end.Sub(m.StartTime).Round(time.Second).String()
}

func (m Model) IsFinished() bool {
	if len(m.Progress) == 0 || m.IsRunning {
		return false
	}
	for _, p := range m.Progress {
		if p.Status == StatusWaiting || p.Status == StatusGenerating || p.Status == StatusRepairing {
			return false
		}
	}
	return true
}

func (m Model) anyFieldFocused() bool {
	for _, f := range m.Fields {
		if f.Focused() {
			return true
		}
	}
	return false
}

func (m Model) blurAllFields() Model {
	for i := range m.Fields {
		m.Fields[i].Blur()
	}
	return m
}
