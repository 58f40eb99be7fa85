package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

const noDataMessage = "No data available for the selected location, date range, model, or scenario."

type optionsResponse struct {
	Models    []domain.Model    `json:"models"`
	Scenarios []domain.Scenario `json:"scenarios"`
	MinDate   string            `json:"min_date"`
	MaxDate   string            `json:"max_date"`
	Defaults  queryDefaults     `json:"defaults"`
}

type queryDefaults struct {
	Model    domain.Model    `json:"model"`
	Scenario domain.Scenario `json:"scenario"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
}

type projectionResponse struct {
	domain.Projection
	Charts []Chart `json:"charts"`
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, optionsResponse{
		Models:    domain.Models,
		Scenarios: domain.Scenarios,
		MinDate:   domain.MinDate.Format(domain.DateLayout),
		MaxDate:   domain.MaxDate.Format(domain.DateLayout),
		Defaults: queryDefaults{
			Model:    domain.Models[0],
			Scenario: domain.Scenarios[0],
			Start:    domain.DefaultStart.Format(domain.DateLayout),
			End:      domain.DefaultEnd.Format(domain.DateLayout),
		},
	})
}

func (s *Server) handleProjection(res domain.Resolution) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		format := values.Get("format")
		if format == "" {
			format = "json"
		}
		if format != "json" && format != "csv" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q (expected json or csv)", format))
			return
		}

		q, err := parseQuery(values)
		if err != nil {
			s.writeFetchError(w, res, err)
			return
		}

		proj, err := s.fetcher.Fetch(r.Context(), res, q)
		if err != nil {
			s.writeFetchError(w, res, err)
			return
		}

		if format == "csv" {
			s.writeCSV(w, proj)
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, projectionResponse{Projection: proj, Charts: buildCharts(proj)})
	}
}

func (s *Server) writeCSV(w http.ResponseWriter, proj domain.Projection) {
	var buf bytes.Buffer
	var err error
	filename := "climate_projections.csv"
	if proj.Resolution == domain.ResolutionMonthly {
		filename = "climate_projections_monthly.csv"
		err = domain.WriteMonthlyCSV(&buf, proj.Monthly)
	} else {
		err = domain.WriteDailyCSV(&buf, proj.Daily)
	}
	if err != nil {
		s.logger.Error("encode csv failed", "request_id", proj.RequestID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeFetchError(w http.ResponseWriter, res domain.Resolution, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrNoData):
		writeError(w, http.StatusNotFound, noDataMessage)
	default:
		s.logger.Error("unexpected error", "resolution", res, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch data: "+err.Error())
	}
}

// parseQuery reads lat, lon, start, end, model, and scenario, applying defaults
// for everything except the point. A request without both lat and lon has no point.
func parseQuery(values url.Values) (domain.QueryParams, error) {
	q := domain.QueryParams{
		Start:    domain.DefaultStart,
		End:      domain.DefaultEnd,
		Model:    domain.Models[0],
		Scenario: domain.Scenarios[0],
	}

	latStr, lonStr := values.Get("lat"), values.Get("lon")
	if latStr != "" && lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return q, &domain.ValidationError{Field: "lat", Message: fmt.Sprintf("invalid latitude %q", latStr)}
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return q, &domain.ValidationError{Field: "lon", Message: fmt.Sprintf("invalid longitude %q", lonStr)}
		}
		q.Point = &domain.Point{Lat: lat, Lon: lon}
	}

	if v := values.Get("start"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			return q, &domain.ValidationError{Field: "start", Message: "start: " + err.Error()}
		}
		q.Start = t
	}
	if v := values.Get("end"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			return q, &domain.ValidationError{Field: "end", Message: "end: " + err.Error()}
		}
		q.End = t
	}
	if v := values.Get("model"); v != "" {
		q.Model = domain.Model(v)
	}
	if v := values.Get("scenario"); v != "" {
		q.Scenario = domain.Scenario(v)
	}
	return q, nil
}
