package main

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	sentChartTitle      = "No. of emails sent by most prolific senders"
	sentChartYLabel     = "No. of emails sent"
	contactsChartTitle  = "No. of unique person(s) who contacted the prolific senders"
	contactsChartYLabel = "No. of unique contact(s)"
	chartXLabel         = "Time by Month"
)

// renderLineChart draws one line per person of the table over its months and
// saves the image; the format follows the file extension.
func renderLineChart(table MonthlyTable, title string, yLabel string, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = chartXLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = monthTicker(table.Months)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.Top = true

	p.X.Min = 0
	p.X.Max = math.Max(1, float64(len(table.Months)-1))
	p.Y.Min = 0
	p.Y.Max = 1

	for j, person := range table.People {
		values := table.Column(person)
		points := make(plotter.XYs, len(values))
		for i, value := range values {
			points[i].X = float64(i)
			points[i].Y = float64(value)
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("chart line for %s: %w", person, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(j)
		p.Add(line)
		p.Legend.Add(person, line)
	}

	if err := p.Save(20*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

func monthTicker(months []Month) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		ticks := make([]plot.Tick, 0, len(months))
		for i, month := range months {
			ticks = append(ticks, plot.Tick{Value: float64(i), Label: month.String()})
		}
		return ticks
	})
}
