package domain

import (
	"fmt"
	"time"
)

// RawSample holds the scalar values the remote service reduced at the query point.
// A nil field means the band was absent or masked.
type RawSample struct {
	Pr     *float64 `json:"pr,omitempty"`
	Tasmin *float64 `json:"tasmin,omitempty"`
	Tasmax *float64 `json:"tasmax,omitempty"`
}

// Missing returns the names of absent bands.
func (s RawSample) Missing() []string {
	var missing []string
	if s.Pr == nil {
		missing = append(missing, "pr")
	}
	if s.Tasmin == nil {
		missing = append(missing, "tasmin")
	}
	if s.Tasmax == nil {
		missing = append(missing, "tasmax")
	}
	return missing
}

// Complete reports whether every band is present.
func (s RawSample) Complete() bool {
	return s.Pr != nil && s.Tasmin != nil && s.Tasmax != nil
}

// DailyRecord is one day of converted projection values.
type DailyRecord struct {
	Date            time.Time `json:"date"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	MinTemperatureC float64   `json:"min_temperature_c"`
	MaxTemperatureC float64   `json:"max_temperature_c"`
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the month containing t (in UTC).
func YearMonthOf(t time.Time) YearMonth {
	t = t.UTC()
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.ParseInLocation("2006-01", s, time.UTC)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
	}
	return YearMonthOf(t), nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Start returns midnight UTC on the first day of the month.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	return YearMonthOf(ym.Start().AddDate(0, 1, 0))
}

// Before reports whether ym is earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// RiskLevel is a coarse categorical hazard label.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// ParseRiskLevel accepts the exact label text.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskModerate, RiskHigh:
		return RiskLevel(s), nil
	default:
		return "", fmt.Errorf("invalid risk level %q", s)
	}
}

// MonthlyRecord is a month of aggregated projection values with derived risk labels.
type MonthlyRecord struct {
	Month           YearMonth `json:"month"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	MinTemperatureC float64   `json:"min_temperature_c"`
	MaxTemperatureC float64   `json:"max_temperature_c"`
	FloodRisk       RiskLevel `json:"flood_risk"`
	DroughtRisk     RiskLevel `json:"drought_risk"`
}

// Resolution selects daily or monthly records.
type Resolution string

const (
	ResolutionDaily   Resolution = "daily"
	ResolutionMonthly Resolution = "monthly"
)

// Projection is the result of one pipeline run.
type Projection struct {
	RequestID   string          `json:"request_id"`
	Resolution  Resolution      `json:"resolution"`
	Query       QueryParams     `json:"query"`
	Daily       []DailyRecord   `json:"daily,omitempty"`
	Monthly     []MonthlyRecord `json:"monthly,omitempty"`
	Skipped     int             `json:"skipped"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Len returns the number of records in the projection.
func (p Projection) Len() int {
	if p.Resolution == ResolutionMonthly {
		return len(p.Monthly)
	}
	return len(p.Daily)
}
