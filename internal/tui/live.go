package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/stats"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const (
	DefaultBatch = 25
	historyLen   = 60
	barWidth     = 40
)

// Live runs a simulation in batches, one per tick, and shows how the mean
// and standard deviation settle. The trials form a single stream from one
// sampler, so the final numbers match a plain run with the same seed and
// method.
type Live struct {
	model montecarlo.Model
	seed  int64
	cfg   montecarlo.Config
	batch int

	sim       *montecarlo.Simulator
	acc       stats.Accumulator
	done      int
	nonFinite int
	history   []float64
	paused    bool
	err       error

	// gen tags the active tick chain; ticks from an older chain are dropped.
	gen int
}

func NewLive(model montecarlo.Model, seed int64, cfg montecarlo.Config, batch int) (*Live, error) {
	if batch <= 0 {
		batch = DefaultBatch
	}
	l := &Live{model: model, seed: seed, cfg: cfg, batch: batch}
	if err := l.reset(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Live) reset() error {
	acc, err := stats.NewAccumulator(l.cfg.Method)
	if err != nil {
		return err
	}
	l.acc = acc
	l.sim = montecarlo.New(l.model, sampler.NewSeeded(l.seed))
	l.sim.AddObserver(montecarlo.ObserverFunc(func(_ int, _ montecarlo.Conditions, lift float64) {
		l.acc.Observe(lift)
	}))
	l.done = 0
	l.nonFinite = 0
	l.history = l.history[:0]
	l.err = nil
	return nil
}

// Step runs the next batch of trials.
func (l *Live) Step() {
	if l.Done() || l.err != nil {
		return
	}
	n := l.batch
	if rest := l.cfg.Trials - l.done; n > rest {
		n = rest
	}

	cfg := l.cfg
	cfg.Trials = n
	cfg.ValidateResults = false
	cfg.KeepLifts = false

	res, err := l.sim.Run(context.Background(), cfg)
	if err != nil {
		l.err = err
		return
	}
	l.done += res.TrialsRun
	l.nonFinite += res.Summary.NonFinite

	l.history = append(l.history, l.acc.Mean())
	if len(l.history) > historyLen {
		l.history = l.history[1:]
	}
}

func (l *Live) Done() bool { return l.done >= l.cfg.Trials }

func (l *Live) Err() error { return l.err }

// Summary reports the moments of the trials run so far.
func (l *Live) Summary() stats.Summary {
	return stats.Summary{
		Method:    l.acc.Name(),
		Trials:    l.acc.Count(),
		Mean:      l.acc.Mean(),
		StdDev:    l.acc.StdDev(),
		NonFinite: l.nonFinite,
	}
}

type tickMsg struct{ gen int }

func tick(gen int) tea.Cmd {
	return tea.Tick(30*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// restartTicks abandons any pending tick and starts a new chain.
func (l *Live) restartTicks() tea.Cmd {
	l.gen++
	return tick(l.gen)
}

func (l *Live) Init() tea.Cmd { return tick(l.gen) }

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return l, tea.Quit
		case " ", "p":
			l.paused = !l.paused
			if l.paused {
				l.gen++
				return l, nil
			}
			return l, l.restartTicks()
		case "r":
			if err := l.reset(); err != nil {
				l.err = err
				return l, nil
			}
			l.paused = false
			return l, l.restartTicks()
		}
		return l, nil
	case tickMsg:
		if l.paused || msg.gen != l.gen {
			return l, nil
		}
		l.Step()
		if l.Done() || l.err != nil {
			return l, nil
		}
		return l, tick(l.gen)
	}
	return l, nil
}

func (l *Live) View() string {
	var b strings.Builder

	b.WriteString("\n  " + white.Bold(true).Render("liftmc") + dim.Render(" · live Monte Carlo") + "\n\n")

	frac := float64(l.done) / float64(l.cfg.Trials)
	status := green.Render("running")
	switch {
	case l.err != nil:
		status = red.Render("error: " + l.err.Error())
	case l.Done():
		status = cyan.Render("done")
	case l.paused:
		status = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("  %s %s  %s\n\n", progressBar(frac, barWidth), dim.Render(fmt.Sprintf("%d/%d", l.done, l.cfg.Trials)), status))

	s := l.Summary()
	b.WriteString(fmt.Sprintf("  %s %s\n", dim.Render("mean  "), cyan.Render(fmt.Sprintf("%10.3f N", s.Mean))))
	b.WriteString(fmt.Sprintf("  %s %s\n", dim.Render("stddev"), cyan.Render(fmt.Sprintf("%10.3f N", s.StdDev))))
	if l.nonFinite > 0 {
		b.WriteString(fmt.Sprintf("  %s %s\n", dim.Render("nan   "), red.Render(fmt.Sprintf("%10d", l.nonFinite))))
	}
	b.WriteString(fmt.Sprintf("\n  %s %s\n", dim.Render("mean"), cyan.Render(sparkline(l.history, historyLen))))

	b.WriteString("\n" + dim.Render("  space/p pause  r restart  q quit") + "\n")
	return b.String()
}

func progressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return green.Render(strings.Repeat("█", filled)) + dim.Render(strings.Repeat("░", width-filled))
}

func sparkline(data []float64, width int) string {
	finite := stats.Finite(data)
	if len(finite) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := finite[0], finite[0]
	for _, v := range finite {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(finite) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(finite); i++ {
		idx := int((finite[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// RunLive shows l full screen until the user quits.
func RunLive(l *Live) error {
	p := tea.NewProgram(l, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
