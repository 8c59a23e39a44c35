package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/and161185/taskhive/internal/client"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "taskhive")
}

func Test_cfgDir_And_Paths(t *testing.T) {
	base := withTmpConfig(t)
	if got := cfgDir(); got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasPrefix(tokenPath(), base) || !strings.HasSuffix(tokenPath(), "token.json") {
		t.Fatalf("tokenPath unexpected: %s", tokenPath())
	}
}

func Test_token_SaveLoadClear(t *testing.T) {
	_ = withTmpConfig(t)

	if _, err := loadToken(); err == nil {
		t.Fatalf("expected error when token file missing")
	}
	if err := saveToken(tokenFile{AccessToken: "tok", Username: "bob", ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	tf, err := loadToken()
	if err != nil || tf.AccessToken != "tok" || tf.Username != "bob" {
		t.Fatalf("loadToken: %+v err=%v", tf, err)
	}
	st, err := os.Stat(tokenPath())
	if err != nil || st.Mode().Perm() != 0o600 {
		t.Fatalf("token file mode: %v %v", st, err)
	}

	if err := saveToken(tokenFile{AccessToken: "tok2", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("saveToken expired: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("want error for expired token")
	}

	if err := clearToken(); err != nil {
		t.Fatalf("clearToken: %v", err)
	}
	if err := clearToken(); err != nil {
		t.Fatalf("clearToken twice: %v", err)
	}
}

func Test_printJSON_WritesPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]any{"a": 1}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	var m map[string]any
	if json.Unmarshal(buf.Bytes(), &m) != nil || m["a"] != float64(1) {
		t.Fatalf("printJSON produced invalid json: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatalf("printJSON should indent")
	}
}

func Test_parseDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := parseDue("48h", now)
	if err != nil || !got.Equal(now.Add(48*time.Hour)) {
		t.Fatalf("duration: %v %v", got, err)
	}
	got, err = parseDue("2026-02-01T00:00:00Z", now)
	if err != nil || got.Month() != time.February {
		t.Fatalf("rfc3339: %v %v", got, err)
	}
	if _, err := parseDue("tomorrow", now); err == nil {
		t.Fatalf("want error on garbage")
	}
}

func Test_describe(t *testing.T) {
	t.Parallel()

	got := describe(&client.APIError{Status: 409, Msg: "User bob is already in project p!"})
	if got != "error (409): User bob is already in project p!" {
		t.Fatalf("describe: %q", got)
	}
}

func Test_loginCmd_SavesToken(t *testing.T) {
	_ = withTmpConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"msg":        "Logged in!",
			"token":      "jwt-1",
			"expires_at": time.Now().Add(time.Hour),
		})
	}))
	defer srv.Close()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--api", srv.URL, "login", "-u", "bob", "-p", "pw"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Logged in!" {
		t.Fatalf("output: %q", out.String())
	}
	tf, err := loadToken()
	if err != nil || tf.AccessToken != "jwt-1" {
		t.Fatalf("token not saved: %+v %v", tf, err)
	}
}

func Test_authedCommand_RequiresLogin(t *testing.T) {
	_ = withTmpConfig(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"projects", "list"})
	if err := root.ExecuteContext(context.Background()); err != errNoToken {
		t.Fatalf("want errNoToken, got %v", err)
	}
}
