package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/chargerdash/internal/config"
	"github.com/jgoulah/chargerdash/internal/pivot"
	"github.com/jgoulah/chargerdash/pkg/models"
)

type fakeSource struct {
	monthly []models.MonthlyUsage
	weekday []models.WeekdayUsage
	err     error
}

func (f *fakeSource) MonthlyUsage(ctx context.Context) ([]models.MonthlyUsage, error) {
	return f.monthly, f.err
}

func (f *fakeSource) WeekdayUsage(ctx context.Context) ([]models.WeekdayUsage, error) {
	return f.weekday, nil
}

func sampleSource() *fakeSource {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return &fakeSource{
		monthly: []models.MonthlyUsage{
			{Month: jan, Year: 2024, MonthNo: 1, MeterName: "M1", ChargingEvents: 5, TotalUsageKWh: 100},
			{Month: jan, Year: 2024, MonthNo: 1, MeterName: "M2", ChargingEvents: 3, TotalUsageKWh: 50},
			{Month: feb, Year: 2024, MonthNo: 2, MeterName: "M1", ChargingEvents: 2, TotalUsageKWh: 20.5},
		},
		weekday: []models.WeekdayUsage{
			{Year: "2024", DayName: "Saturday", MeterName: "M1", TotalUsageKWh: 4},
			{Year: "2024", DayName: "Sunday", MeterName: "M2", TotalUsageKWh: 6},
			{Year: "2023", DayName: "Monday", MeterName: "M1", TotalUsageKWh: 1},
		},
	}
}

func newTestServer(t *testing.T, src Source) *echo.Echo {
	t.Helper()
	h := NewHandler(src, config.DashboardConfig{Title: "Test Chargers"}, nil)
	h.now = func() time.Time { return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC) }
	e, err := NewServer(h, nil)
	require.NoError(t, err)
	return e
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDashboardPage(t *testing.T) {
	e := newTestServer(t, sampleSource())

	rec := get(t, e, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Test Chargers</h1>")
	assert.Contains(t, body, `vegaEmbed("#monthly-chart"`)
	assert.Contains(t, body, `vegaEmbed("#weekday-chart"`)
	assert.Contains(t, body, "<th>Total Total Usage (kWh)</th>")
	assert.Contains(t, body, "<td>170.50</td>")
	assert.Contains(t, body, `value="2024-01-01"`)
	assert.Contains(t, body, "from Jan 2024 to Jun 2024")
	assert.NotContains(t, body, pivot.InvalidRangeWarning)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestDashboardPageEmpty(t *testing.T) {
	e := newTestServer(t, &fakeSource{})

	rec := get(t, e, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), NoDataWarning))
	assert.NotContains(t, rec.Body.String(), "vegaEmbed(")
}

func TestMonthlyPivotEndpoint(t *testing.T) {
	e := newTestServer(t, sampleSource())

	rec := get(t, e, "/api/monthly/pivot?start=2024-01-01&end=2024-01-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var table pivot.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	require.Len(t, table.Rows, 2)

	v, ok := table.Value(pivot.RowKey{Year: 2024, Month: 1}, pivot.Column{Meter: pivot.TotalLabel, Metric: pivot.TotalUsageKWh})
	require.True(t, ok)
	assert.Equal(t, 150.0, v)
	v, _ = table.Value(pivot.RowKey{Year: 2024, Month: 1}, pivot.Column{Meter: pivot.TotalLabel, Metric: pivot.ChargingEvents})
	assert.Equal(t, 8.0, v)
}

func TestInvertedRangeFallsBack(t *testing.T) {
	e := newTestServer(t, sampleSource())

	var unfiltered, inverted struct {
		Warnings []string              `json:"warnings"`
		Data     []models.MonthlyUsage `json:"data"`
	}

	rec := get(t, e, "/api/monthly")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unfiltered))

	rec = get(t, e, "/api/monthly?start=2024-03-01&end=2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inverted))

	assert.Equal(t, []string{pivot.InvalidRangeWarning}, inverted.Warnings)
	assert.Equal(t, unfiltered.Data, inverted.Data)
	assert.Len(t, inverted.Data, 3)

	page := get(t, e, "/?start=2024-03-01&end=2024-01-01")
	assert.Contains(t, page.Body.String(), pivot.InvalidRangeWarning)
}

func TestInvalidDateParam(t *testing.T) {
	e := newTestServer(t, sampleSource())

	rec := get(t, e, "/api/monthly?start=01/02/2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSourceErrorIs500(t *testing.T) {
	e := newTestServer(t, &fakeSource{err: errors.New("connection refused")})

	rec := get(t, e, "/api/monthly")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMonthlyCSV(t *testing.T) {
	e := newTestServer(t, sampleSource())

	rec := get(t, e, "/api/monthly.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "monthly_summary_2024-01-01_2024-06-30.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Period,M1 Charging Events,M1 Total Usage (kWh),M2 Charging Events,M2 Total Usage (kWh),Total Charging Events,Total Total Usage (kWh)", lines[0])
	assert.Equal(t, "2024-01,5,100.00,3,50.00,8,150.00", lines[1])
	assert.Equal(t, "2024-02,2,20.50,0,0.00,2,20.50", lines[2])
	assert.Equal(t, "Total,7,120.50,3,50.00,10,170.50", lines[3])
}

func TestWeekdayEndpointOrder(t *testing.T) {
	e := newTestServer(t, sampleSource())

	rec := get(t, e, "/api/weekday")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.WeekdayUsage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// 2023 is before the earliest month and is filtered out
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Sunday", body.Data[0].DayName)
	assert.Equal(t, "Saturday", body.Data[1].DayName)
}

func TestChartEndpoints(t *testing.T) {
	e := newTestServer(t, sampleSource())

	rec := get(t, e, "/api/charts/monthly")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"vconcat"`)

	rec = get(t, e, "/api/charts/weekday")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"facet"`)

	empty := newTestServer(t, &fakeSource{})
	assert.Equal(t, http.StatusNotFound, get(t, empty, "/api/charts/monthly").Code)
	assert.Equal(t, http.StatusNotFound, get(t, empty, "/api/charts/weekday").Code)
	assert.Equal(t, http.StatusNotFound, get(t, empty, "/api/monthly.csv").Code)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, &fakeSource{})
	rec := get(t, e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
