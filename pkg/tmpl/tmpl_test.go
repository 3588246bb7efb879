package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "struct data",
			tmpl: "{{ .Source }} spans {{ .Frames }} frames",
			data: struct {
				Source string
				Frames int
			}{Source: "trace.csv", Frames: 12},
			want: "trace.csv spans 12 frames",
		},
		{
			name: "no variables",
			tmpl: "static string",
			data: nil,
			want: "static string",
		},
		{
			name:    "missing key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			tmpl:    "{{ .Name }",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name: "empty value is valid",
			tmpl: "prefix{{ .Name }}suffix",
			data: map[string]string{"Name": ""},
			want: "prefixsuffix",
		},
		{
			name: "ms function",
			tmpl: "from {{ .Start | ms }} to {{ .End | ms }}",
			data: struct {
				Start int64
				End   int64
			}{Start: 0, End: 1450},
			want: "from 0ms to 1450ms",
		},
		{
			name: "pct function",
			tmpl: "{{ pct .Matched .Total }} matched",
			data: struct {
				Matched int
				Total   int
			}{Matched: 3, Total: 8},
			want: "37.5% matched",
		},
		{
			name: "pct function zero total",
			tmpl: "{{ pct .Matched .Total }}",
			data: struct {
				Matched int
				Total   int
			}{},
			want: "0.0%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
