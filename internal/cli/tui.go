package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idekerlab/cdhidef-go/pkg/pipeline"
)

// =============================================================================
// WatchModel - Interactive pipeline progress view
// =============================================================================

// watchTickMsg advances the spinner animation.
type watchTickMsg time.Time

// watchDoneMsg carries the pipeline outcome into the model.
type watchDoneMsg struct {
	res *pipeline.Result
	err error
}

// watchModel is the bubbletea model for the run --watch progress view.
// It shows the current stage with elapsed time while the clustering
// subprocess runs.
type watchModel struct {
	stage   string
	start   time.Time
	frame   int
	res     *pipeline.Result
	err     error
	aborted bool
}

// newWatchModel creates a watch model for the given stage label.
func newWatchModel(stage string) watchModel {
	return watchModel{stage: stage, start: time.Now()}
}

func (m watchModel) Init() tea.Cmd {
	return watchTick()
}

func watchTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case watchTickMsg:
		m.frame++
		return m, watchTick()
	case watchDoneMsg:
		m.res = msg.res
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.res != nil || m.err != nil || m.aborted {
		return ""
	}

	var b strings.Builder
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	elapsed := time.Since(m.start).Round(time.Second)

	b.WriteString(styleIconSpinner.Render(frame))
	b.WriteString(" ")
	b.WriteString(StyleValue.Render(m.stage))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", elapsed)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  q: abort"))
	b.WriteString("\n")

	return b.String()
}

// runWatch executes the pipeline while rendering the watch view. The
// view quits when the pipeline finishes or the user aborts.
func runWatch(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*pipeline.Result, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel("clustering with hidef"),
		tea.WithContext(watchCtx),
		tea.WithOutput(os.Stderr))

	go func() {
		res, err := runner.Execute(watchCtx, input, opts)
		p.Send(watchDoneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(watchModel)
	if m.aborted {
		cancel()
		return nil, errWatchAborted()
	}
	return m.res, m.err
}

// errWatchAborted is returned when the user quits the watch view before
// the pipeline finishes. It carries its own exit status so an in-app
// abort is distinguishable from a SIGINT.
func errWatchAborted() error {
	return exitErr(ExitAborted, fmt.Errorf("aborted"))
}
