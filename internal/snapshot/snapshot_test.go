package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"ok", Options{URL: "http://localhost:8501/", Out: "dash.png"}, ""},
		{"https", Options{URL: "https://dash.example.com/?start=2024-01-01", Out: "dash.png"}, ""},
		{"no scheme", Options{URL: "localhost:8501", Out: "dash.png"}, "http or https"},
		{"file scheme", Options{URL: "file:///tmp/x.html", Out: "dash.png"}, "http or https"},
		{"no output", Options{URL: "http://localhost:8501/"}, "output path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWithDefaults(t *testing.T) {
	o := Options{Quality: 250}.withDefaults()
	assert.Equal(t, int64(1400), o.Width)
	assert.Equal(t, int64(900), o.Height)
	assert.Equal(t, 100, o.Quality)
	assert.Equal(t, time.Minute, o.Timeout)

	o = Options{Width: 800, Height: 600, Quality: 80, Timeout: time.Second}.withDefaults()
	assert.Equal(t, int64(800), o.Width)
	assert.Equal(t, 80, o.Quality)
	assert.Equal(t, time.Second, o.Timeout)
}

func TestAllocatorOptions(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Greater(t, len(o.allocatorOptions()), 4)
}
