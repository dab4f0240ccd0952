package dashboard

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ncruces/go-strftime"
	"go.uber.org/zap"

	"github.com/jgoulah/chargerdash/internal/pivot"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateRenderer adapts html/template to echo.Renderer
type templateRenderer struct {
	templates *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	},
	"monthLabel": func(t time.Time) string {
		if t.IsZero() {
			return "the beginning"
		}
		return strftime.Format("%b %Y", t)
	},
	"isTotal": func(label string) bool {
		return label == pivot.TotalLabel
	},
}

func newRenderer() (*templateRenderer, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{templates: t}, nil
}

// NewServer builds the echo instance serving h
func NewServer(h *Handler, logger *zap.Logger) (*echo.Echo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	h.RegisterRoutes(e)
	return e, nil
}
