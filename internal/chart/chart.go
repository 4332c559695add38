// Package chart renders trend snapshots as images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingtrend/internal/trend"
)

// Style selects the chart colour scheme.
type Style string

const (
	StyleDefault Style = "default"
	StyleDark    Style = "dark"
)

var (
	ErrUnknownStyle = errors.New("unknown chart style")
	ErrNoData       = errors.New("no samples to plot")
)

// ParseStyle validates a style name.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleDefault, StyleDark:
		return Style(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Options configures rendering.
type Options struct {
	Title  string
	Width  int
	Height int
	Style  Style
}

// DefaultOptions returns the options used for the live chart.
func DefaultOptions() Options {
	return Options{
		Title:  "Ping Trend",
		Width:  1200,
		Height: 400,
		Style:  StyleDefault,
	}
}

type palette struct {
	background drawing.Color
	foreground drawing.Color
	grid       drawing.Color
}

func (s Style) palette() palette {
	if s == StyleDark {
		return palette{
			background: drawing.ColorBlack,
			foreground: drawing.ColorWhite,
			grid:       drawing.Color{R: 70, G: 70, B: 70, A: 255},
		}
	}
	return palette{
		background: drawing.ColorWhite,
		foreground: drawing.ColorBlack,
		grid:       drawing.Color{R: 200, G: 200, B: 200, A: 255},
	}
}

// Build projects a snapshot onto a chart. Failed probes are gaps in a series:
// every run of consecutive replies becomes its own line in the target's color,
// and only the first run of a target is named so the legend lists it once.
func Build(snap trend.Snapshot, opts Options) (*chart.Chart, error) {
	pal := opts.Style.palette()

	var series, named []chart.Series
	var minX, maxX time.Time
	var maxY float64
	first := true
	for i, s := range snap.Series {
		style := chart.Style{
			StrokeColor: chart.GetDefaultColor(i),
			StrokeWidth: 2,
			DotColor:    chart.GetDefaultColor(i),
			DotWidth:    2,
		}

		runs := replyRuns(s.Points)
		for j, run := range runs {
			for _, p := range run {
				if first || p.Time.Before(minX) {
					minX = p.Time
				}
				if first || p.Time.After(maxX) {
					maxX = p.Time
				}
				maxY = math.Max(maxY, millis(p))
				first = false
			}

			ts := chart.TimeSeries{
				Style:   style,
				XValues: make([]time.Time, len(run)),
				YValues: make([]float64, len(run)),
			}
			for k, p := range run {
				ts.XValues[k] = p.Time
				ts.YValues[k] = millis(p)
			}
			if j == 0 {
				ts.Name = s.Target.Name
				named = append(named, ts)
			}
			series = append(series, ts)
		}
	}

	if len(series) == 0 {
		return nil, ErrNoData
	}

	// go-chart rejects zero-width ranges, which a single tick would produce
	if !maxX.After(minX) {
		minX = minX.Add(-30 * time.Second)
		maxX = maxX.Add(30 * time.Second)
	}
	if maxY <= 0 {
		maxY = 1
	}

	axisStyle := chart.Style{
		StrokeColor: pal.foreground,
		FontColor:   pal.foreground,
		FontSize:    10,
	}

	graph := &chart.Chart{
		Title: opts.Title,
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: pal.foreground,
		},
		Background: chart.Style{
			FillColor: pal.background,
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Canvas: chart.Style{
			FillColor: pal.background,
		},
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: chart.XAxis{
			Name: "Measurement time",
			NameStyle: chart.Style{
				FontSize:  12,
				FontColor: pal.foreground,
			},
			Style:          axisStyle,
			ValueFormatter: chart.TimeMinuteValueFormatter,
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(minX),
				Max: chart.TimeToFloat64(maxX),
			},
		},
		YAxis: chart.YAxis{
			Name: "Response time (ms)",
			NameStyle: chart.Style{
				FontSize:  12,
				FontColor: pal.foreground,
			},
			Style: axisStyle,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: maxY * 1.1,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: pal.grid,
				StrokeWidth: 1.0,
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendThin(&chart.Chart{Series: named}),
	}

	return graph, nil
}

// replyRuns splits points into runs of consecutive replies.
func replyRuns(points []trend.Point) [][]trend.Point {
	var runs [][]trend.Point
	var current []trend.Point
	for _, p := range points {
		if !p.OK() {
			if len(current) > 0 {
				runs = append(runs, current)
				current = nil
			}
			continue
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

func millis(p trend.Point) float64 {
	return float64(p.RTT) / float64(time.Millisecond)
}

// Render writes the snapshot as a PNG.
func Render(w io.Writer, snap trend.Snapshot, opts Options) error {
	graph, err := Build(snap, opts)
	if err != nil {
		return err
	}
	return graph.Render(chart.PNG, w)
}

// WriteFile renders the snapshot into a PNG file.
func WriteFile(path string, snap trend.Snapshot, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Render(file, snap, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
