package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LawnGnome/graphql-field-timer/packages/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{
		Endpoint: "http://api.example.com/graphql",
		Results: []timer.Result{
			{
				Query:    "query {\n\tuser {\n\t\tname\n\t}\n}",
				Status:   timer.Success,
				Duration: 120 * time.Millisecond,
				Response: []byte(`{"data": {"user": {"name": "a"}}}`),
			},
			{
				Query:    "query {\n\tuser {\n\t\tage\n\t}\n}",
				Status:   timer.Failure,
				Duration: 340 * time.Millisecond,
				Response: []byte(`{"data": null, "errors": [{"message": "boom"}]}`),
			},
		},
		Summary: timer.Summary{
			Count: 2,
			Min:   120 * time.Millisecond,
			Mean:  230 * time.Millisecond,
			Max:   340 * time.Millisecond,
			P50:   120 * time.Millisecond,
			P95:   340 * time.Millisecond,
			P99:   340 * time.Millisecond,
		},
		Elapsed: 500 * time.Millisecond,
	}
}

func TestConsoleFormatter_FormatReport(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatReport(sampleReport())
	out := buf.String()

	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "ERR")
	assert.Contains(t, out, "query { user { name } }")
	assert.Contains(t, out, "query { user { age } }")
	assert.Contains(t, out, "boom", "failures must dump the raw response")
	assert.Contains(t, out, "1 ok")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "2 total")
	assert.Contains(t, out, "p95")
}

func TestConsoleFormatter_SuccessBodiesOnlyInVerbose(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatReport(sampleReport())
	assert.NotContains(t, buf.String(), `"name": "a"`)

	buf.Reset()
	f = NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	f.FormatReport(sampleReport())
	assert.Contains(t, buf.String(), `"name": "a"`)
}

func TestConsoleFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatError(errors.New("cannot find fragment with name F"))
	assert.Contains(t, buf.String(), "cannot find fragment with name F")
}

func TestJSONFormatter_FormatReport(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatReport(sampleReport())

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "http://api.example.com/graphql", out.Endpoint)
	assert.Equal(t, 2, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Passed)
	assert.Equal(t, 1, out.Summary.Failed)
	require.Len(t, out.Results, 2)

	assert.Equal(t, "OK", out.Results[0].Status)
	assert.Equal(t, "query { user { name } }", out.Results[0].Query)
	assert.Empty(t, out.Results[0].Response, "success responses are omitted")

	assert.Equal(t, "ERR", out.Results[1].Status)
	assert.NotEmpty(t, out.Results[1].Response, "failure responses are retained")
}
