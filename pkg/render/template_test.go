package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate(t *testing.T) {
	sunrise := time.Date(2023, 6, 1, 2, 47, 12, 0, time.UTC)
	light := 42

	tests := []struct {
		name   string
		text   string
		result Result
		want   string
	}{
		{
			name:   "default event",
			result: Result{Observer: "berlin", Operation: "rise", Time: sunrise},
			want:   "berlin rise: 2023-06-01T02:47:12Z\n",
		},
		{
			name:   "default value",
			result: Result{Observer: "berlin-moon", Operation: "light", Value: &light},
			want:   "berlin-moon light: 42\n",
		},
		{
			name:   "default position",
			result: Result{Observer: "berlin", Operation: "pos", Position: &Position{Azimuth: 180.5, Altitude: -12.25}},
			want:   "berlin pos: az=180.5000 alt=-12.2500\n",
		},
		{
			name:   "sprig functions",
			text:   `{{ .Operation | upper }} {{ .Time.Unix }} {{ .Observer | trunc 3 }}`,
			result: Result{Observer: "berlin", Operation: "noon", Time: sunrise},
			want:   "NOON 1685587632 ber",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New(tt.text)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, tmpl.Execute(&buf, tt.result))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTemplate_Errors(t *testing.T) {
	_, err := New("{{ .Observer ")
	assert.Error(t, err)

	tmpl, err := New("{{ .Missing }}")
	require.NoError(t, err)
	assert.Error(t, tmpl.Execute(&bytes.Buffer{}, Result{}))
}
