package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
)

var (
	// DailyCSVHeader is the header row of a daily export.
	DailyCSVHeader = []string{"date", "precipitation_mm", "min_temperature_c", "max_temperature_c"}
	// MonthlyCSVHeader is the header row of a monthly export.
	MonthlyCSVHeader = []string{"date", "precipitation_mm", "min_temperature_c", "max_temperature_c", "flood_risk", "drought_risk"}
)

// WriteDailyCSV writes the header and one row per record.
func WriteDailyCSV(w io.Writer, records []DailyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DailyCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date.Format(DateLayout),
			formatFloat(r.PrecipitationMM),
			formatFloat(r.MinTemperatureC),
			formatFloat(r.MaxTemperatureC),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", row[0], err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonthlyCSV writes the header and one row per record.
func WriteMonthlyCSV(w io.Writer, records []MonthlyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MonthlyCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Month.String(),
			formatFloat(r.PrecipitationMM),
			formatFloat(r.MinTemperatureC),
			formatFloat(r.MaxTemperatureC),
			string(r.FloodRisk),
			string(r.DroughtRisk),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", row[0], err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDailyCSV parses a daily export produced by WriteDailyCSV.
func ReadDailyCSV(r io.Reader) ([]DailyRecord, error) {
	rows, err := readRows(r, DailyCSVHeader)
	if err != nil {
		return nil, err
	}
	records := make([]DailyRecord, 0, len(rows))
	for i, row := range rows {
		date, err := ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		vals, err := parseFloats(row[1:4])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, DailyRecord{
			Date:            date,
			PrecipitationMM: vals[0],
			MinTemperatureC: vals[1],
			MaxTemperatureC: vals[2],
		})
	}
	return records, nil
}

// ReadMonthlyCSV parses a monthly export produced by WriteMonthlyCSV.
func ReadMonthlyCSV(r io.Reader) ([]MonthlyRecord, error) {
	rows, err := readRows(r, MonthlyCSVHeader)
	if err != nil {
		return nil, err
	}
	records := make([]MonthlyRecord, 0, len(rows))
	for i, row := range rows {
		month, err := ParseYearMonth(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		vals, err := parseFloats(row[1:4])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		flood, err := ParseRiskLevel(row[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: flood_risk: %w", i+2, err)
		}
		drought, err := ParseRiskLevel(row[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: drought_risk: %w", i+2, err)
		}
		records = append(records, MonthlyRecord{
			Month:           month,
			PrecipitationMM: vals[0],
			MinTemperatureC: vals[1],
			MaxTemperatureC: vals[2],
			FloodRisk:       flood,
			DroughtRisk:     drought,
		})
	}
	return records, nil
}

func readRows(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	got, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("unexpected csv header %v", got)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

// formatFloat uses the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
