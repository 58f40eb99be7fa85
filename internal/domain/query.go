package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// DateLayout is the ISO calendar date format used in queries and CSV output.
const DateLayout = "2006-01-02"

// DefaultDataset is the remote image collection holding the projections.
const DefaultDataset = "NASA/GDDP-CMIP6"

var (
	// MinDate is the first day a projection may be requested for.
	MinDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	// MaxDate is the last day a projection may be requested for.
	MaxDate = time.Date(2100, time.December, 31, 0, 0, 0, 0, time.UTC)

	// DefaultStart and DefaultEnd are the range offered when the caller sends none.
	DefaultStart = MinDate
	DefaultEnd   = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Model identifies a CMIP6 climate model run.
type Model string

const (
	ModelACCESSCM2 Model = "ACCESS-CM2"
	ModelCanESM5   Model = "CanESM5"
	ModelGFDLCM4   Model = "GFDL-CM4"
	ModelGISSE21G  Model = "GISS-E2-1-G"
)

// Models lists the selectable models; the first is the default.
var Models = []Model{ModelACCESSCM2, ModelCanESM5, ModelGFDLCM4, ModelGISSE21G}

// Scenario identifies a shared socioeconomic pathway.
type Scenario string

const (
	ScenarioSSP245 Scenario = "ssp245"
	ScenarioSSP585 Scenario = "ssp585"
)

// Scenarios lists the selectable future scenarios; the first is the default.
var Scenarios = []Scenario{ScenarioSSP245, ScenarioSSP585}

// Valid reports whether m is one of the enumerated models.
func (m Model) Valid() bool { return slices.Contains(Models, m) }

// Valid reports whether s is one of the enumerated scenarios.
func (s Scenario) Valid() bool { return slices.Contains(Scenarios, s) }

// Point is a WGS-84 latitude/longitude coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// QueryParams is one user request for a projection.
type QueryParams struct {
	// Point is nil when no location has been selected.
	Point    *Point    `json:"point"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Model    Model     `json:"model"`
	Scenario Scenario  `json:"scenario"`
}

// Validate checks the request before anything is sent to the remote service.
// Checks run in a fixed order so the first problem reported is stable.
func (q QueryParams) Validate() error {
	if q.Point == nil {
		return newValidationError("point", "please select a location on the map")
	}
	if math.IsNaN(q.Point.Lat) || q.Point.Lat < -90 || q.Point.Lat > 90 {
		return newValidationError("lat", "latitude must be between -90 and 90")
	}
	if math.IsNaN(q.Point.Lon) || q.Point.Lon < -180 || q.Point.Lon > 180 {
		return newValidationError("lon", "longitude must be between -180 and 180")
	}
	if !q.Start.Before(q.End) {
		return newValidationError("start", "start date must be before end date")
	}
	if q.Start.Before(MinDate) {
		return newValidationError("start", "start date must be on or after %s for future projections", MinDate.Format(DateLayout))
	}
	if q.End.After(MaxDate) {
		return newValidationError("end", "end date cannot be after %s", MaxDate.Format(DateLayout))
	}
	if !q.Model.Valid() {
		return newValidationError("model", "unknown model %q", q.Model)
	}
	if !q.Scenario.Valid() {
		return newValidationError("scenario", "unknown scenario %q", q.Scenario)
	}
	return nil
}

// Days returns the number of calendar days in the inclusive range.
func (q QueryParams) Days() int {
	return int(q.End.Sub(q.Start).Hours()/24) + 1
}

// Collection builds the remote collection filter for this request. End is
// exclusive, so it is set to the day after the last requested day.
func (q QueryParams) Collection(dataset string) CollectionQuery {
	var p Point
	if q.Point != nil {
		p = *q.Point
	}
	return CollectionQuery{
		Dataset:  dataset,
		Model:    q.Model,
		Scenario: q.Scenario,
		Point:    p,
		Start:    q.Start,
		End:      q.End.AddDate(0, 0, 1),
	}
}

// CollectionQuery filters the remote image collection by date range, model and
// scenario attribute equality, and point containment.
type CollectionQuery struct {
	Dataset  string
	Model    Model
	Scenario Scenario
	Point    Point
	Start    time.Time
	// End is exclusive.
	End time.Time
}

// ParseDate parses an ISO calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// Truncate drops the time of day, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
