package domain

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyCSV_RoundTrip(t *testing.T) {
	var records []DailyRecord
	for i, s := range []RawSample{
		{Pr: ptr(3.1415e-5), Tasmin: ptr(280.123456789), Tasmax: ptr(295.987654321)},
		{Pr: ptr(0), Tasmin: ptr(250.5), Tasmax: ptr(260.25)},
		{Pr: ptr(1.0 / 3.0 / 86400), Tasmin: ptr(300.1), Tasmax: ptr(310.7)},
	} {
		r, err := NewDailyRecord(date(2026, time.March, 1+i), s)
		require.NoError(t, err)
		records = append(records, r)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDailyCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,precipitation_mm,min_temperature_c,max_temperature_c", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2026-03-01,"))

	parsed, err := ReadDailyCSV(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(records, parsed); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthlyCSV_RoundTrip(t *testing.T) {
	records := []MonthlyRecord{
		{Month: YearMonth{Year: 2031, Month: time.January}, PrecipitationMM: 120.75, MinTemperatureC: 2.5, MaxTemperatureC: 9.125, FloodRisk: RiskHigh, DroughtRisk: RiskLow},
		{Month: YearMonth{Year: 2031, Month: time.February}, PrecipitationMM: 20.000000001, MinTemperatureC: 21, MaxTemperatureC: 35.3, FloodRisk: RiskLow, DroughtRisk: RiskHigh},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyCSV(&buf, records))
	assert.True(t, strings.HasPrefix(buf.String(),
		"date,precipitation_mm,min_temperature_c,max_temperature_c,flood_risk,drought_risk\n2031-01,120.75,2.5,9.125,High,Low\n"))

	parsed, err := ReadMonthlyCSV(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(records, parsed); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteDailyCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDailyCSV(&buf, nil))
	assert.Equal(t, "date,precipitation_mm,min_temperature_c,max_temperature_c\n", buf.String())
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		monthly bool
		want    string
	}{
		{"empty", "", false, "empty csv"},
		{"wrong header", "day,pr,tmin,tmax\n", false, "unexpected csv header"},
		{"bad date", "date,precipitation_mm,min_temperature_c,max_temperature_c\n2026/01/01,1,2,3\n", false, "row 2"},
		{"bad number", "date,precipitation_mm,min_temperature_c,max_temperature_c\n2026-01-01,x,2,3\n", false, "invalid number"},
		{"short row", "date,precipitation_mm,min_temperature_c,max_temperature_c\n2026-01-01,1,2\n", false, "read csv"},
		{"bad risk", "date,precipitation_mm,min_temperature_c,max_temperature_c,flood_risk,drought_risk\n2026-01,1,2,3,Severe,Low\n", true, "flood_risk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.monthly {
				_, err = ReadMonthlyCSV(strings.NewReader(tt.input))
			} else {
				_, err = ReadDailyCSV(strings.NewReader(tt.input))
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
