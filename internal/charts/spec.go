// Package charts builds declarative Vega-Lite specifications for the
// dashboard. Rendering happens in the browser through vega-embed.
package charts

import (
	"encoding/json"
	"time"
)

// SchemaURL is the Vega-Lite version the specs target
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Encoding types
const (
	Temporal     = "temporal"
	Quantitative = "quantitative"
	Nominal      = "nominal"
)

// Spec is the subset of a Vega-Lite view specification used here
type Spec struct {
	Schema      string    `json:"$schema,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Data        *Data     `json:"data,omitempty"`
	Mark        *Mark     `json:"mark,omitempty"`
	Encoding    *Encoding `json:"encoding,omitempty"`
	Params      []Param   `json:"params,omitempty"`
	Width       any       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Layer       []*Spec   `json:"layer,omitempty"`
	VConcat     []*Spec   `json:"vconcat,omitempty"`
	Facet       *Facet    `json:"facet,omitempty"`
	Spec        *Spec     `json:"spec,omitempty"`
}

// Data holds inline rows
type Data struct {
	Values any `json:"values"`
}

// Mark is a graphical mark
type Mark struct {
	Type    string `json:"type"`
	Tooltip bool   `json:"tooltip,omitempty"`
}

// Encoding maps data fields onto visual channels
type Encoding struct {
	X       *Channel  `json:"x,omitempty"`
	Y       *Channel  `json:"y,omitempty"`
	Color   *Channel  `json:"color,omitempty"`
	XOffset *Channel  `json:"xOffset,omitempty"`
	Opacity *Channel  `json:"opacity,omitempty"`
	Size    *Channel  `json:"size,omitempty"`
	Tooltip []Channel `json:"tooltip,omitempty"`
}

// Channel is a field or value definition for one encoding channel
type Channel struct {
	Field     string     `json:"field,omitempty"`
	Type      string     `json:"type,omitempty"`
	TimeUnit  string     `json:"timeUnit,omitempty"`
	Title     string     `json:"title,omitempty"`
	Format    string     `json:"format,omitempty"`
	Axis      *Axis      `json:"axis,omitempty"`
	Scale     *Scale     `json:"scale,omitempty"`
	Sort      []string   `json:"sort,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
	Value     any        `json:"value,omitempty"`
}

// Axis configures axis labels
type Axis struct {
	Format string `json:"format,omitempty"`
}

// Scale configures a channel's scale
type Scale struct {
	Domain any      `json:"domain,omitempty"`
	Range  []string `json:"range,omitempty"`
	Zero   *bool    `json:"zero,omitempty"`
}

// ParamDomain binds a scale domain to an interval selection
type ParamDomain struct {
	Param    string `json:"param"`
	Encoding string `json:"encoding,omitempty"`
}

// Condition picks Value when the named selection matches
type Condition struct {
	Param string `json:"param"`
	Value any    `json:"value"`
	Empty *bool  `json:"empty,omitempty"`
}

// Param declares a selection parameter
type Param struct {
	Name   string    `json:"name"`
	Select Selection `json:"select"`
	Bind   string    `json:"bind,omitempty"`
	Value  any       `json:"value,omitempty"`
}

// Selection describes how a selection parameter is driven
type Selection struct {
	Type      string   `json:"type"`
	Encodings []string `json:"encodings,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	On        string   `json:"on,omitempty"`
	Nearest   bool     `json:"nearest,omitempty"`
	Clear     string   `json:"clear,omitempty"`
}

// Facet splits a view into rows by a field
type Facet struct {
	Row *Channel `json:"row,omitempty"`
}

// DateTime is a Vega-Lite date-time object
type DateTime struct {
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Date  int  `json:"date"`
	UTC   bool `json:"utc,omitempty"`
}

// NewDateTime converts t to a UTC date-time object
func NewDateTime(t time.Time) DateTime {
	y, m, d := t.UTC().Date()
	return DateTime{Year: y, Month: int(m), Date: d, UTC: true}
}

// JSON encodes the spec
func (s *Spec) JSON() ([]byte, error) {
	return json.Marshal(s)
}

func boolPtr(b bool) *bool {
	return &b
}
