package domain

import "time"

const (
	secondsPerDay = 86400
	kelvinOffset  = 273.15
)

// PrecipitationMM converts a precipitation flux in kg m-2 s-1 to millimetres per day.
func PrecipitationMM(pr float64) float64 {
	return pr * secondsPerDay
}

// Celsius converts Kelvin to degrees Celsius.
func Celsius(k float64) float64 {
	return k - kelvinOffset
}

// NewDailyRecord converts a sample into a record for the given day.
// It returns a *SampleError naming the absent bands when the sample is incomplete.
func NewDailyRecord(day time.Time, s RawSample) (DailyRecord, error) {
	if !s.Complete() {
		return DailyRecord{}, &SampleError{Key: dateKey(day), Missing: s.Missing()}
	}
	return DailyRecord{
		Date:            Truncate(day),
		PrecipitationMM: PrecipitationMM(*s.Pr),
		MinTemperatureC: Celsius(*s.Tasmin),
		MaxTemperatureC: Celsius(*s.Tasmax),
	}, nil
}

// NewMonthlyRecord converts a monthly aggregate sample (summed pr, mean
// temperatures) and classifies its risk.
func NewMonthlyRecord(month YearMonth, s RawSample) (MonthlyRecord, error) {
	if !s.Complete() {
		return MonthlyRecord{}, &SampleError{Key: month.String(), Missing: s.Missing()}
	}
	r := MonthlyRecord{
		Month:           month,
		PrecipitationMM: PrecipitationMM(*s.Pr),
		MinTemperatureC: Celsius(*s.Tasmin),
		MaxTemperatureC: Celsius(*s.Tasmax),
	}
	r.FloodRisk = FloodRisk(r.PrecipitationMM)
	r.DroughtRisk = DroughtRisk(r.PrecipitationMM, r.MaxTemperatureC)
	return r, nil
}

// FloodRisk labels monthly precipitation: >100 mm High, >50 mm Moderate, else Low.
func FloodRisk(precipitationMM float64) RiskLevel {
	switch {
	case precipitationMM > 100:
		return RiskHigh
	case precipitationMM > 50:
		return RiskModerate
	default:
		return RiskLow
	}
}

// DroughtRisk labels a month from precipitation and mean max temperature:
//   - High: < 30 mm and > 30 °C
//   - Moderate: < 50 mm and > 25 °C
//   - Low otherwise
func DroughtRisk(precipitationMM, maxTemperatureC float64) RiskLevel {
	switch {
	case precipitationMM < 30 && maxTemperatureC > 30:
		return RiskHigh
	case precipitationMM < 50 && maxTemperatureC > 25:
		return RiskModerate
	default:
		return RiskLow
	}
}
