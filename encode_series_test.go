package dca

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSamples(t *testing.T) {
	p, cfg := scenario()
	res := NewSimulation(p, cfg).Run()

	var buf bytes.Buffer
	require.NoError(t, EncodeSamples(&buf, res))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(res.Samples))
	assert.True(t, strings.HasPrefix(lines[0], `{"on":"2020-01-01","equity":1000,"invested":1000,`), lines[0])
	assert.Contains(t, lines[0], `"weights":{"A":0.5,"B":0.5}`)
	assert.NotContains(t, lines[0], "final")

	var last struct {
		On      string             `json:"on"`
		Equity  float64            `json:"equity"`
		Weights map[string]float64 `json:"weights"`
		Final   bool               `json:"final"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "2020-04-15", last.On)
	assert.Equal(t, 1370.0, last.Equity)
	assert.Equal(t, map[string]float64{"A": 0, "B": 0}, last.Weights)
	assert.True(t, last.Final)
}
