package timer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestTimer_SendSuccess(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"field": 1}}`))
	}))
	defer server.Close()

	tm, err := New(server.URL,
		[]string{"X-Api-Key: secret", "  X-Trace :  abc  "},
		map[string]any{"id": "42"})
	require.NoError(t, err)

	result, err := tm.Send(context.Background(), "query { field }")
	require.NoError(t, err)

	assert.Equal(t, Success, result.Status)
	assert.Equal(t, "query { field }", result.Query)
	assert.Greater(t, result.Duration, time.Duration(0))
	assert.JSONEq(t, `{"data": {"field": 1}}`, string(result.Response))

	assert.Equal(t, "application/json; charset=utf-8", gotHeader.Get("Content-Type"))
	assert.Equal(t, "secret", gotHeader.Get("X-Api-Key"))
	assert.Equal(t, "abc", gotHeader.Get("X-Trace"))

	assert.Equal(t, "query { field }", gjson.GetBytes(gotBody, "query").String())
	assert.Equal(t, "42", gjson.GetBytes(gotBody, "variables.id").String())
}

func TestTimer_SendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": null, "errors": [{"message": "boom"}]}`))
	}))
	defer server.Close()

	tm, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	result, err := tm.Send(context.Background(), "query { field }")
	require.NoError(t, err)
	assert.Equal(t, Failure, result.Status)
}

func TestTimer_SendProtocolViolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	tm, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	_, err = tm.Send(context.Background(), "query { field }")
	require.Error(t, err)

	var protocolErr *ProtocolError
	require.True(t, errors.As(err, &protocolErr))
	assert.Contains(t, string(protocolErr.Raw), "unexpected")
}

func TestTimer_SendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	tm, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	_, err = tm.Send(context.Background(), "query { field }")
	require.Error(t, err)
}

func TestTimer_RunSequential(t *testing.T) {
	var received []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = append(received, gjson.GetBytes(body, "query").String())
		_, _ = w.Write([]byte(`{"data": {"ok": true}}`))
	}))
	defer server.Close()

	tm, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	queries := []string{"query { a }", "query { b }", "query { c }"}
	var progressCalls []int
	results, err := tm.Run(context.Background(), queries, func(done, total int) {
		assert.Equal(t, 3, total)
		progressCalls = append(progressCalls, done)
	})
	require.NoError(t, err)

	assert.Equal(t, queries, received, "queries must be sent in flattening order")
	assert.Equal(t, []int{1, 2, 3}, progressCalls)
	require.Len(t, results, 3)
	for _, result := range results {
		assert.Equal(t, Success, result.Status)
	}

	summary := tm.Summary()
	assert.Equal(t, int64(3), summary.Count)
	assert.LessOrEqual(t, summary.Min, summary.P50)
	assert.LessOrEqual(t, summary.P50, summary.Max)
}

func TestTimer_RunAbortsOnFatalError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"ok": true}}`))
	}))
	defer server.Close()

	tm, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	_, err = tm.Run(context.Background(), []string{"query { a }", "query { b }", "query { c }"}, nil)
	require.Error(t, err)
	assert.Equal(t, 2, calls, "run must stop at the first fatal error")
}

func TestNew_Validation(t *testing.T) {
	_, err := New("ftp://example.com", nil, nil)
	assert.ErrorContains(t, err, "unsupported URL scheme")

	_, err = New("http://", nil, nil)
	assert.ErrorContains(t, err, "host")

	_, err = New("http://example.com", []string{"NoColonHere"}, nil)
	assert.ErrorContains(t, err, "malformed header")
}

func TestParseVariables(t *testing.T) {
	variables, err := ParseVariables("")
	require.NoError(t, err)
	assert.Empty(t, variables)

	variables, err = ParseVariables(`{"id": 7, "tags": ["a"]}`)
	require.NoError(t, err)
	assert.Equal(t, float64(7), variables["id"])

	_, err = ParseVariables(`[1, 2]`)
	assert.Error(t, err, "variables must be a JSON object")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  Status
		wantErr bool
	}{
		{name: "data present", body: `{"data": {"field": 1}}`, status: Success},
		{name: "data and errors", body: `{"data": {"field": 1}, "errors": [{}]}`, status: Success},
		{name: "null data with errors", body: `{"data": null, "errors": [{"message": "x"}]}`, status: Failure},
		{name: "errors only", body: `{"errors": [{"message": "x"}]}`, status: Failure},
		{name: "neither key", body: `{}`, wantErr: true},
		{name: "both null", body: `{"data": null, "errors": null}`, wantErr: true},
		{name: "not json", body: `<html>oops</html>`, wantErr: true},
		{name: "not an object", body: `[1, 2]`, wantErr: true},
		{name: "errors not a list", body: `{"errors": {"message": "x"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := classify([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				var protocolErr *ProtocolError
				assert.True(t, errors.As(err, &protocolErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestRank(t *testing.T) {
	results := []Result{
		{Query: "slow ok", Status: Success, Duration: 2 * time.Second},
		{Query: "fast err", Status: Failure, Duration: 1 * time.Second},
		{Query: "fast ok", Status: Success, Duration: 1 * time.Second},
	}

	Rank(results)

	assert.Equal(t, "fast ok", results[0].Query)
	assert.Equal(t, "slow ok", results[1].Query)
	assert.Equal(t, "fast err", results[2].Query)
}

func TestRank_StableOnTies(t *testing.T) {
	results := []Result{
		{Query: "first", Status: Success, Duration: time.Second},
		{Query: "second", Status: Success, Duration: time.Second},
		{Query: "third", Status: Success, Duration: time.Second},
	}

	Rank(results)

	assert.Equal(t, "first", results[0].Query)
	assert.Equal(t, "second", results[1].Query)
	assert.Equal(t, "third", results[2].Query)
}
