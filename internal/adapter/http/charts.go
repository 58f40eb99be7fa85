package http

import (
	"fmt"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

// Chart is one line series ready for a plotting client.
type Chart struct {
	Title  string       `json:"title"`
	XAxis  string       `json:"x_axis"`
	YAxis  string       `json:"y_axis"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is an x (date or YYYY-MM) / y pair.
type ChartPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

const temperatureAxis = "Temperature (°C)"

// buildCharts returns precipitation, minimum temperature, and maximum temperature
// series in that order.
func buildCharts(p domain.Projection) []Chart {
	if p.Resolution == domain.ResolutionMonthly {
		precip, tmin, tmax := newCharts("Monthly", "Month", "mm/month", len(p.Monthly))
		for _, r := range p.Monthly {
			x := r.Month.String()
			precip.Points = append(precip.Points, ChartPoint{X: x, Y: r.PrecipitationMM})
			tmin.Points = append(tmin.Points, ChartPoint{X: x, Y: r.MinTemperatureC})
			tmax.Points = append(tmax.Points, ChartPoint{X: x, Y: r.MaxTemperatureC})
		}
		return []Chart{precip, tmin, tmax}
	}

	precip, tmin, tmax := newCharts("Daily", "Date", "mm/day", len(p.Daily))
	for _, r := range p.Daily {
		x := r.Date.Format(domain.DateLayout)
		precip.Points = append(precip.Points, ChartPoint{X: x, Y: r.PrecipitationMM})
		tmin.Points = append(tmin.Points, ChartPoint{X: x, Y: r.MinTemperatureC})
		tmax.Points = append(tmax.Points, ChartPoint{X: x, Y: r.MaxTemperatureC})
	}
	return []Chart{precip, tmin, tmax}
}

func newCharts(period, xAxis, precipUnit string, n int) (Chart, Chart, Chart) {
	precip := Chart{
		Title:  period + " Precipitation (Future Projection)",
		XAxis:  xAxis,
		YAxis:  fmt.Sprintf("Precipitation (%s)", precipUnit),
		Points: make([]ChartPoint, 0, n),
	}
	tmin := Chart{
		Title:  period + " Minimum Temperature (Future Projection)",
		XAxis:  xAxis,
		YAxis:  temperatureAxis,
		Points: make([]ChartPoint, 0, n),
	}
	tmax := Chart{
		Title:  period + " Maximum Temperature (Future Projection)",
		XAxis:  xAxis,
		YAxis:  temperatureAxis,
		Points: make([]ChartPoint, 0, n),
	}
	return precip, tmin, tmax
}
