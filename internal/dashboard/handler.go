package dashboard

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jgoulah/chargerdash/internal/config"
	"github.com/jgoulah/chargerdash/internal/pivot"
)

const dateLayout = "2006-01-02"

// Handler serves the dashboard page and its JSON/CSV endpoints
type Handler struct {
	source Source
	cfg    config.DashboardConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a handler reading from source
func NewHandler(source Source, cfg config.DashboardConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		source: source,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "dashboard")),
		now:    time.Now,
	}
}

// RegisterRoutes mounts the dashboard on e
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetDashboard)
	e.GET("/healthz", h.GetHealth)

	api := e.Group("/api")
	api.GET("/monthly", h.GetMonthly)
	api.GET("/monthly/pivot", h.GetMonthlyPivot)
	api.GET("/monthly.csv", h.GetMonthlyCSV)
	api.GET("/weekday", h.GetWeekday)
	api.GET("/charts/monthly", h.GetMonthlyChart)
	api.GET("/charts/weekday", h.GetWeekdayChart)
}

// parseRange reads the optional start/end query parameters
func parseRange(c echo.Context) (*pivot.DateRange, error) {
	start, end := c.QueryParam("start"), c.QueryParam("end")
	if start == "" && end == "" {
		return nil, nil
	}

	var r pivot.DateRange
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid start date %q (use YYYY-MM-DD)", start))
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid end date %q (use YYYY-MM-DD)", end))
		}
		r.End = t
	}
	return &r, nil
}

// load fetches and filters the data for one request
func (h *Handler) load(c echo.Context) (*Filtered, error) {
	r, err := parseRange(c)
	if err != nil {
		return nil, err
	}

	ds, err := Fetch(c.Request().Context(), h.source)
	if err != nil {
		h.logger.Error("loading dashboard data", zap.Error(err))
		return nil, err
	}

	f := ds.Filter(r, h.now())
	for _, w := range f.Warnings {
		h.logger.Warn("date filter", zap.String("warning", w),
			zap.Time("start", f.Range.Start), zap.Time("end", f.Range.End))
	}
	return f, nil
}

// GetDashboard renders the HTML page
func (h *Handler) GetDashboard(c echo.Context) error {
	f, err := h.load(c)
	if err != nil {
		return err
	}

	page := Page{
		Title:        h.cfg.GetTitle(),
		PrimaryColor: h.cfg.GetPrimaryColor(),
		Range:        f.Range,
		Warnings:     f.Warnings,
		MonthlyEmpty: len(f.Monthly) == 0,
		WeekdayEmpty: len(f.Weekday) == 0,
		Metrics:      pivot.Metrics,
		MeterMetrics: pivot.AllTime(f.Monthly),
	}
	if !page.MonthlyEmpty {
		page.Records = pivot.Monthly(f.Monthly).WithTotals().Records()
	}

	colors := h.cfg.GetColors()
	if page.MonthlyChart, err = specJS(f.MonthlyChart(colors)); err != nil {
		return err
	}
	if page.WeekdayChart, err = specJS(f.WeekdayChart(colors)); err != nil {
		return err
	}

	return c.Render(http.StatusOK, "dashboard.html", page)
}

// GetHealth reports liveness
func (h *Handler) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetMonthly returns the filtered monthly rows
func (h *Handler) GetMonthly(c echo.Context) error {
	f, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"range":    f.Range,
		"warnings": f.Warnings,
		"data":     f.Monthly,
	})
}

// GetMonthlyPivot returns the pivoted monthly table with totals
func (h *Handler) GetMonthlyPivot(c echo.Context) error {
	f, err := h.load(c)
	if err != nil {
		return err
	}
	if len(f.Monthly) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, NoDataWarning)
	}
	return c.JSON(http.StatusOK, pivot.Monthly(f.Monthly).WithTotals())
}

// GetMonthlyCSV downloads the pivoted monthly table
func (h *Handler) GetMonthlyCSV(c echo.Context) error {
	f, err := h.load(c)
	if err != nil {
		return err
	}
	if len(f.Monthly) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, NoDataWarning)
	}

	filename := fmt.Sprintf("monthly_summary_%s_%s.csv",
		f.Range.Start.Format(dateLayout), f.Range.End.Format(dateLayout))
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, "attachment; filename="+url.PathEscape(filename))
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.WriteAll(pivot.Monthly(f.Monthly).WithTotals().Records()); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// GetWeekday returns the filtered day-of-week rows in Sunday-first order
func (h *Handler) GetWeekday(c echo.Context) error {
	f, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"range":    f.Range,
		"warnings": f.Warnings,
		"data":     f.Weekday,
	})
}

// GetMonthlyChart returns the Vega-Lite spec of the usage time series
func (h *Handler) GetMonthlyChart(c echo.Context) error {
	f, err := h.load(c)
	if err != nil {
		return err
	}
	spec := f.MonthlyChart(h.cfg.GetColors())
	if spec == nil {
		return echo.NewHTTPError(http.StatusNotFound, NoDataWarning)
	}
	return c.JSON(http.StatusOK, spec)
}

// GetWeekdayChart returns the Vega-Lite spec of the day-of-week bars
func (h *Handler) GetWeekdayChart(c echo.Context) error {
	f, err := h.load(c)
	if err != nil {
		return err
	}
	spec := f.WeekdayChart(h.cfg.GetColors())
	if spec == nil {
		return echo.NewHTTPError(http.StatusNotFound, NoDataWarning)
	}
	return c.JSON(http.StatusOK, spec)
}
