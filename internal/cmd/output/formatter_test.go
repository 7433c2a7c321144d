package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    output.Format
		wantErr bool
	}{
		{"", "", false},
		{"JSON", output.FormatJSON, false},
		{" yaml ", output.FormatYAML, false},
		{"wide", output.FormatWide, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, output.FormatJSON, output.DetectFormat("", &buf))
	assert.Equal(t, output.FormatYAML, output.DetectFormat(output.FormatYAML, &buf))
	assert.True(t, output.FormatWide.IsTable())
	assert.False(t, output.FormatJSON.IsTable())
}

type row struct {
	Title string  `json:"title"`
	Price float64 `json:"best_price"`
}

func TestPrinter(t *testing.T) {
	data := table.Data{
		Headers:         []string{"Title", "Best Price"},
		Rows:            [][]string{{"Hades & Co", "15.00"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
	raw := []row{{Title: "Hades & Co", Price: 15}}

	var buf bytes.Buffer
	p := output.NewPrinter(&buf, output.FormatTable)
	require.NoError(t, p.Print(data, raw))
	assert.Contains(t, buf.String(), "Hades & Co")
	assert.Contains(t, buf.String(), "15.00")
	assert.False(t, p.Wide())

	buf.Reset()
	require.NoError(t, output.NewPrinter(&buf, output.FormatJSON).Print(data, raw))
	assert.JSONEq(t, `[{"title":"Hades & Co","best_price":15}]`, buf.String())

	buf.Reset()
	require.NoError(t, output.NewPrinter(&buf, output.FormatYAML).Print(data, raw))
	assert.Contains(t, buf.String(), "title:")
	assert.Contains(t, buf.String(), "Hades")
	assert.Contains(t, buf.String(), "best_price: 15")
}
