package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/bank"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/metrics"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/testcache"
)

type TestApp struct {
	Handler *Application
	Bank    *bank.Bank
}

func newTestApp(t *testing.T) *TestApp {
	t.Helper()

	return newTestAppWithOptions(t, Options{
		Currency:              "USD",
		DefaultOverdraftLimit: decimal.NewFromInt(1000),
		DefaultInterestRate:   decimal.RequireFromString("0.005"),
	})
}

func newTestAppWithOptions(t *testing.T, opts Options) *TestApp {
	t.Helper()

	redis, err := testcache.OpenConnection()
	require.NoError(t, err)

	m := metrics.NewRecorder()
	b := bank.New("Test Bank", redis, m)

	return &TestApp{
		Handler: NewApplication(b, redis, m, opts),
		Bank:    b,
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (a *TestApp) do(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	switch p := payload.(type) {
	case nil:
	case string:
		body.WriteString(p)
	default:
		require.NoError(t, json.NewEncoder(&body).Encode(p))
	}

	req, err := http.NewRequest(method, path, &body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	require.NoError(t, json.NewDecoder(w.Body).Decode(dst))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var response map[string]string
	decodeBody(t, w, &response)

	return response["error"]
}
