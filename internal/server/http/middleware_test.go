package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/taskhive/internal/errs"
)

func TestRecover_Panic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"msg":"internal"}`, rec.Body.String())
	require.Equal(t, 1, logs.FilterMessage("panic").Len())
}

func TestLogging_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("secret")))

	entries := logs.FilterMessage("http").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, http.MethodPost, fields["method"])
	require.Equal(t, "/api/tasks", fields["path"])
	require.EqualValues(t, http.StatusTeapot, fields["status"])
	for _, v := range fields {
		require.NotEqual(t, "secret", v)
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{errs.NotFoundf("x"), http.StatusNotFound},
		{errs.NotAllowedf("x"), http.StatusConflict},
		{errs.AlreadyExistsf("x"), http.StatusConflict},
		{errs.Unauthorizedf("x"), http.StatusForbidden},
		{errs.Unauthenticatedf("x"), http.StatusUnauthorized},
		{errs.Invalidf("x"), http.StatusBadRequest},
		{&errs.Error{Kind: errs.ErrRateLimited, Msg: "x"}, http.StatusTooManyRequests},
		{fmt.Errorf("wrapped: %w", errs.NotFoundf("x")), http.StatusNotFound},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusOf(tc.err); got != tc.want {
			t.Fatalf("statusOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWriteError_HidesInternal(t *testing.T) {
	s := New(nil, zap.NewNop())
	rec := httptest.NewRecorder()
	s.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"msg":"internal"}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`)), &v))
	require.Equal(t, "a", v.Name)

	require.NoError(t, decode(httptest.NewRequest(http.MethodPost, "/", nil), &v))

	err := decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &v)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}
