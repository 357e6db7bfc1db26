package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meridianhttp "github.com/meridian-tools/meridian/internal/adapters/http"
	"github.com/meridian-tools/meridian/pkg/adapters/memory"
	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/dispatch"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/pool"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

func newServer(t *testing.T) (*httptest.Server, *pool.Pool) {
	t.Helper()

	cat, err := catalog.New()
	require.NoError(t, err)

	p := pool.New(memory.NewVariableStore())
	rec := transcript.NewRecorder(memory.NewTranscriptStore(), "http-test")
	d := dispatch.New(cat, p, rec)

	srv := httptest.NewServer(meridianhttp.NewHandler(d, cat, p, rec))
	t.Cleanup(srv.Close)
	return srv, p
}

func seed(t *testing.T, p *pool.Pool, id string, values ...float64) {
	t.Helper()
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = time.Date(2020, time.Month(i%12+1), 15, 0, 0, 0, 0, time.UTC).AddDate(i/12, 0, 0)
	}
	require.NoError(t, p.Add(context.Background(), domain.Variable{
		ID: id, Values: values, Axis: domain.Axis{Times: times},
	}))
}

func postDispatch(t *testing.T, srv *httptest.Server, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/dispatch", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDispatchEndpoint_Bounds(t *testing.T) {
	srv, p := newServer(t)
	seed(t, p, "tas", 1, 2, 3)

	resp := postDispatch(t, srv, meridianhttp.DispatchRequest{
		Op:        domain.OpBoundsYearly,
		Selection: domain.Selection{"tas"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out meridianhttp.DispatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, domain.OpBoundsYearly, out.Op)
	assert.False(t, out.Aborted)

	v, err := p.Get(context.Background(), "tas")
	require.NoError(t, err)
	assert.True(t, v.Axis.HasBounds())
}

func TestDispatchEndpoint_SeasonDerives(t *testing.T) {
	srv, p := newServer(t)
	values := make([]float64, 24)
	for i := range values {
		values[i] = float64(1 + 2*(i/12))
	}
	seed(t, p, "tas", values...)

	resp := postDispatch(t, srv, meridianhttp.DispatchRequest{
		Op:        domain.SeasonOp(domain.ModeExtract, domain.AggAnnual),
		Selection: domain.Selection{"tas"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out meridianhttp.DispatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"tas_annualmeans"}, out.Derived)
}

func TestDispatchEndpoint_StatisticWithChoices(t *testing.T) {
	srv, p := newServer(t)
	seed(t, p, "tas", 1, 2, 3, 4)

	resp := postDispatch(t, srv, meridianhttp.DispatchRequest{
		Op:        domain.StatOp(domain.StatVariance),
		Selection: domain.Selection{"tas"},
		Choices:   map[string]any{"biased": true},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out meridianhttp.DispatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Values, 1)
	assert.InDelta(t, 5.0/4.0, out.Values[0], 1e-9)
}

func TestDispatchEndpoint_Errors(t *testing.T) {
	srv, p := newServer(t)
	seed(t, p, "tas", 1, 2, 3)

	resp := postDispatch(t, srv, meridianhttp.DispatchRequest{
		Op:        "bogus.op",
		Selection: domain.Selection{"tas"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postDispatch(t, srv, meridianhttp.DispatchRequest{
		Op: domain.OpBoundsYearly,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCatalogEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var menus []catalog.Menu
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&menus))
	require.Len(t, menus, 2)
	assert.Equal(t, "Time Tools", menus[0].Title)
	assert.Equal(t, "Statistics", menus[1].Title)
}

func TestVariablesEndpoints(t *testing.T) {
	srv, p := newServer(t)
	seed(t, p, "tas", 1, 2, 3)

	resp, err := http.Get(srv.URL + "/variables")
	require.NoError(t, err)
	defer resp.Body.Close()
	var ids []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ids))
	assert.Equal(t, []string{"tas"}, ids)

	resp, err = http.Get(srv.URL + "/variables/tas")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v domain.Variable
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, []float64{1, 2, 3}, v.Values)

	resp, err = http.Get(srv.URL + "/variables/absent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTranscriptEndpoint(t *testing.T) {
	srv, p := newServer(t)
	seed(t, p, "tas", 1, 2, 3)

	postDispatch(t, srv, meridianhttp.DispatchRequest{
		Op:        domain.OpBoundsYearly,
		Selection: domain.Selection{"tas"},
	})

	resp, err := http.Get(srv.URL + "/transcript")
	require.NoError(t, err)
	defer resp.Body.Close()
	var entries []domain.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Set Bounds For Yearly Data", entries[0].Text)

	resp, err = http.Get(srv.URL + "/transcript?format=markdown")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "times.setTimeBoundsYearly(tas)")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, p := newServer(t)
	seed(t, p, "tas", 1, 2, 3)

	postDispatch(t, srv, meridianhttp.DispatchRequest{
		Op:        domain.OpBoundsYearly,
		Selection: domain.Selection{"tas"},
	})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "meridian_dispatch_total")
}

func TestOpenAPISpec_IsValidAndServed(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(meridianhttp.OpenAPISpec())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{"/dispatch", "/catalog", "/variables", "/transcript", "/metrics"} {
		assert.NotNil(t, doc.Paths.Find(path), "spec must document %s", path)
	}

	srv, _ := newServer(t)
	resp, err := http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
