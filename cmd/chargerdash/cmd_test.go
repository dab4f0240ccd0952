package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/chargerdash/internal/config"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	got, err := parseDate("2024-02-29", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDate("30d", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "d", "yesterday", "2024/01/01", "-5d"} {
		_, err := parseDate(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	r, err := parseRange("", "", now)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = parseRange("2024-01-01", "", now)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.True(t, r.End.IsZero())

	_, err = parseRange("", "soon", now)
	assert.ErrorContains(t, err, "--end")
}

func TestDefaultDashboardURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8501/", defaultDashboardURL(config.ServerConfig{}))
	assert.Equal(t, "http://0.0.0.0:9000/", defaultDashboardURL(config.ServerConfig{Addr: "0.0.0.0:9000"}))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, [][]string{
		{"Period", "M1 Charging Events"},
		{"2024-01", "5"},
	}))
	assert.Equal(t, "Period,M1 Charging Events\n2024-01,5\n", buf.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "summary", "export", "sql", "publish", "snapshot"} {
		assert.True(t, names[want], want)
	}
}
