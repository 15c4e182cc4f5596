package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/panbanda/commitscope/pkg/analyzer/commits"
	"github.com/panbanda/commitscope/pkg/analyzer/projects"
	"github.com/panbanda/commitscope/pkg/models"
)

// UnselectedColor paints marks outside an active brush.
const UnselectedColor = "#d0d0d0"

const selectedBorderWidth = 3

// Options controls chart sizing and coloring.
type Options struct {
	Title     string
	Width     string
	Height    string
	MinRadius float64
	MaxRadius float64
	Palette   *Palette
	// Selection, when set and non-empty, greys out unselected commits.
	Selection *commits.Selection
}

// DefaultOptions returns the standard 900x500 layout.
func DefaultOptions() Options {
	return Options{
		Title:     "Commits by time of day",
		Width:     "900px",
		Height:    "500px",
		MinRadius: 4,
		MaxRadius: 30,
	}
}

func (o Options) palette() *Palette {
	if o.Palette != nil {
		return o.Palette
	}
	return NewPalette()
}

// Scatter plots each commit at (timestamp, time of day) with a mark size
// that grows with the square root of its line total. Commits are grouped
// into one series per dominant type, in first-seen order.
func Scatter(summaries []models.CommitSummary, o Options) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: o.Width, Height: o.Height}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date", Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time of day", Type: "value", Min: 0, Max: 24}),
	)

	maxLines := 0
	for _, s := range summaries {
		maxLines = max(maxLines, s.TotalLines)
	}
	radius := NewSqrtScale(0, float64(maxLines), o.MinRadius, o.MaxRadius)
	palette := o.palette()
	dim := o.Selection != nil && o.Selection.Commits > 0

	var order []string
	series := make(map[string][]opts.ScatterData)
	var unselected []opts.ScatterData
	for i, s := range summaries {
		point := opts.ScatterData{
			Name:       s.CommitID,
			Value:      []any{s.Timestamp.Format(time.RFC3339), round2(s.TimeOfDayFraction), s.TotalLines},
			SymbolSize: int(math.Round(radius.Map(float64(s.TotalLines)))),
		}
		if dim && !o.Selection.IsSelected(i) {
			unselected = append(unselected, point)
			continue
		}
		typ := s.ByType.Dominant()
		if typ == "" {
			typ = models.OtherType
		}
		if _, ok := series[typ]; !ok {
			order = append(order, typ)
		}
		series[typ] = append(series[typ], point)
	}

	for _, typ := range order {
		scatter.AddSeries(typ, series[typ],
			charts.WithItemStyleOpts(opts.ItemStyle{Color: palette.Color(typ)}),
		)
	}
	if len(unselected) > 0 {
		scatter.AddSeries("unselected", unselected,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: UnselectedColor}),
		)
	}
	return scatter
}

// Pie draws one wedge per slice, colored by position like the legend.
// The selected slice gets a border.
func Pie(slices []projects.Slice, o Options) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: o.Width, Height: o.Height}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	palette := o.palette()
	data := make([]opts.PieData, len(slices))
	for i, s := range slices {
		style := &opts.ItemStyle{Color: palette.At(i)}
		if s.Selected {
			style.BorderColor = "#000000"
			style.BorderWidth = selectedBorderWidth
		}
		data[i] = opts.PieData{Name: s.Label, Value: s.Value, ItemStyle: style}
	}

	pie.AddSeries("Projects", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
			charts.WithPieChartOpts(opts.PieChart{Radius: "50%"}),
		)
	return pie
}

// WritePage renders the charts into one standalone HTML page.
func WritePage(w io.Writer, title string, charters ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(charters...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
