package server

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/sawfit/internal/model"
)

// usageChart shows how the board area splits into placed pieces, the
// leftover region and kerf waste.
func usageChart(sol model.Solution) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Board usage",
			Subtitle: fmt.Sprintf("%g x %g mm, efficiency %.1f%%", sol.Board.Height, sol.Board.Width, sol.Efficiency()),
		}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "sawfit"}),
	)

	pie.AddSeries("area", usageData(sol)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {d}%",
		}))
	return pie
}

func usageData(sol model.Solution) []opts.PieData {
	// mm² → cm² keeps the tooltip numbers readable
	data := []opts.PieData{
		{Name: "placed", Value: sol.PlacedArea() / 100},
		{Name: "leftover", Value: sol.LeftoverArea() / 100},
		{Name: "waste", Value: sol.WasteArea() / 100},
	}
	if !sol.AllPlaced() {
		data = append(data, opts.PieData{Name: "unfit (not on board)", Value: sol.UnfitArea() / 100})
	}
	return data
}
