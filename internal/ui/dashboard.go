package ui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pingtrend/internal/logging"
	"pingtrend/internal/models"
	"pingtrend/internal/targets"
)

var columns = []struct {
	title string
	align int
}{
	{"target", tview.AlignLeft},
	{"address", tview.AlignLeft},
	{"sent", tview.AlignRight},
	{"loss", tview.AlignRight},
	{"last", tview.AlignRight},
	{"best", tview.AlignRight},
	{"worst", tview.AlignRight},
	{"mean", tview.AlignRight},
	{"stddev", tview.AlignRight},
	{"trend", tview.AlignLeft},
	{"last err", tview.AlignLeft},
}

// DashboardOptions configure the dashboard
type DashboardOptions struct {
	Interval   time.Duration
	SparkWidth int
}

// TargetEditor is the editable target list
type TargetEditor interface {
	Targets() []models.Target
	Add(name, address string) error
	Remove(name string) error
}

// Dashboard is the interactive terminal front end
type Dashboard struct {
	app    *tview.Application
	layout *tview.Flex
	table  *tview.Table
	status *tview.TextView
	logs   *tview.TextView
	input  *tview.InputField

	source  Source
	list    TargetEditor
	monitor models.Monitor
	pane    *LogPane
	level   *slog.LevelVar
	logger  *slog.Logger
	opts    DashboardOptions

	ctx     context.Context
	dirty   chan struct{}
	editing bool
}

// NewDashboard builds the dashboard. Log records written to pane show up in
// the log view; level is cycled with the l key. Targets are added with a and
// removed with d while no run is active.
func NewDashboard(source Source, list TargetEditor, monitor models.Monitor, pane *LogPane, level *slog.LevelVar, logger *slog.Logger, opts DashboardOptions) *Dashboard {
	if opts.SparkWidth <= 0 {
		opts.SparkWidth = 30
	}

	d := &Dashboard{
		app:     tview.NewApplication(),
		table:   tview.NewTable().SetBorders(false).SetFixed(1, 0).SetSelectable(true, false),
		status:  tview.NewTextView().SetDynamicColors(true),
		logs:    tview.NewTextView().SetScrollable(true),
		input:   tview.NewInputField().SetLabel(" add target (name=address): "),
		source:  source,
		list:    list,
		monitor: monitor,
		pane:    pane,
		level:   level,
		logger:  logger,
		opts:    opts,
		ctx:     context.Background(),
		dirty:   make(chan struct{}, 1),
	}

	d.table.SetBorder(true).SetTitle(" pingtrend ")
	d.logs.SetBorder(true).SetTitle(" log ")

	d.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			d.addTarget(d.input.GetText())
		}
		d.closeInput()
	})

	d.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.status, 1, 0, false).
		AddItem(d.input, 0, 0, false).
		AddItem(d.table, 0, 3, true).
		AddItem(d.logs, 0, 1, false)

	d.app.SetRoot(d.layout, true).SetFocus(d.table)
	d.app.SetInputCapture(d.handleKey)
	d.render()

	return d
}

// Run shows the dashboard until the user quits or ctx is done.
func (d *Dashboard) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.ctx = ctx

	go d.refreshLoop(ctx)
	go func() {
		<-ctx.Done()
		d.app.Stop()
	}()

	return d.app.Run()
}

func (d *Dashboard) refreshLoop(ctx context.Context) {
	changed, unsubscribe := d.source.Subscribe()
	defer unsubscribe()

	var logChanged <-chan struct{}
	if d.pane != nil {
		logChanged = d.pane.Changed()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
		case <-logChanged:
		case <-d.dirty:
		}
		d.app.QueueUpdateDraw(d.render)
	}
}

func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if d.editing {
		return event
	}

	switch event.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		d.app.Stop()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			d.app.Stop()
			return nil
		case 's':
			go d.toggle()
			return nil
		case 'l':
			lvl := logging.Cycle(d.level)
			d.logger.Warn("log level changed", "level", lvl.String())
			d.markDirty()
			return nil
		case 'a':
			d.openInput()
			return nil
		case 'd':
			d.removeSelected()
			return nil
		}
	}
	return event
}

// toggle starts a stopped run or stops a running one
func (d *Dashboard) toggle() {
	if d.monitor.Running() {
		if err := d.monitor.Stop(); err != nil {
			d.logger.Error("failed to stop run", "error", err)
		}
	} else if err := d.monitor.Start(d.ctx); err != nil {
		d.logger.Error("failed to start run", "error", err)
	}
	d.markDirty()
}

func (d *Dashboard) openInput() {
	d.editing = true
	d.input.SetText("")
	d.layout.ResizeItem(d.input, 1, 0)
	d.app.SetFocus(d.input)
}

func (d *Dashboard) closeInput() {
	d.editing = false
	d.layout.ResizeItem(d.input, 0, 0)
	d.app.SetFocus(d.table)
	d.markDirty()
}

// addTarget adds a "name=address" or "address" entry to the list
func (d *Dashboard) addTarget(text string) {
	t, err := targets.Parse(text)
	if err == nil {
		err = d.list.Add(t.Name, t.Address)
	}
	if err != nil {
		d.logger.Error("failed to add target", "input", text, "error", err)
		return
	}
	d.logger.Info("target added", "target", t.Name, "address", t.Address)
	d.markDirty()
}

// removeSelected removes the target of the selected table row
func (d *Dashboard) removeSelected() {
	row, _ := d.table.GetSelection()
	list := d.list.Targets()
	if row < 1 || row > len(list) {
		return
	}

	name := list[row-1].Name
	if err := d.list.Remove(name); err != nil {
		d.logger.Error("failed to remove target", "target", name, "error", err)
		return
	}
	d.logger.Info("target removed", "target", name)
	d.markDirty()
}

func (d *Dashboard) markDirty() {
	select {
	case d.dirty <- struct{}{}:
	default:
	}
}

// render fills the views from the current source state
func (d *Dashboard) render() {
	state := "[red]stopped[-]"
	if d.monitor.Running() {
		state = "[green]running[-]"
	}
	level := "INFO"
	if d.level != nil {
		level = d.level.Level().String()
	}
	d.status.SetText(fmt.Sprintf(" %s every %s | log level %s | [yellow]s[-] start/stop  [yellow]a[-]/[yellow]d[-] add/remove target  [yellow]l[-] log level  [yellow]q[-] quit",
		state, d.opts.Interval, level))

	d.table.Clear()
	for c, col := range columns {
		d.table.SetCell(0, c, tview.NewTableCell(col.title).
			SetAlign(col.align).
			SetSelectable(false).
			SetTextColor(tcell.ColorYellow))
	}

	snap := d.source.Snapshot()
	series := make(map[string][]float64, len(snap.Series))
	for _, sr := range snap.Series {
		series[sr.Target.Name] = sr.Millis()
	}
	stats := make(map[string]models.Stats)
	for _, st := range d.source.Stats() {
		stats[st.Target] = st
	}

	for i, t := range d.list.Targets() {
		r := i + 1
		st, seen := stats[t.Name]
		millis := series[t.Name]

		trendColor := tcell.ColorGreen
		if len(millis) > 0 && math.IsNaN(millis[len(millis)-1]) {
			trendColor = tcell.ColorRed
		}

		cells := []string{t.Name, t.Address, "n/a", "n/a", "n/a", "n/a", "n/a", "n/a", "n/a", "", ""}
		if seen {
			cells = []string{
				t.Name,
				t.Address,
				strconv.Itoa(st.PacketsSent),
				fmt.Sprintf("%0.2f%%", st.PacketLoss),
				ts(st.Last),
				ts(st.Best),
				ts(st.Worst),
				ts(st.Mean),
				ts(st.StdDev),
				Sparkline(millis, d.opts.SparkWidth),
				st.LastError,
			}
		}
		for c, text := range cells {
			cell := tview.NewTableCell(tview.Escape(text)).SetAlign(columns[c].align)
			if c == 9 {
				cell.SetTextColor(trendColor)
			}
			d.table.SetCell(r, c, cell)
		}
	}

	if d.pane != nil {
		d.logs.SetText(strings.Join(d.pane.Lines(), "\n"))
		d.logs.ScrollToEnd()
	}
}
