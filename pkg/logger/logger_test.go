package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)
	l.WithField("component", "test").Info("hello")
	l.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["message"] != "hello" || entry["component"] != "test" || entry["level"] != "info" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"WARNING": "warn",
		"off":     "disabled",
		"bogus":   "info",
	}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSecurityLogger_Masking(t *testing.T) {
	var buf bytes.Buffer
	sl := GetSecurityLogger(NewWithWriter(Config{Level: "debug"}, &buf))

	if got := sl.MaskAPIEndpoint("https://user:pw@api.dataforseo.com/v3/serp?x=1"); got != "api.dataforseo.com/v3/serp" {
		t.Errorf("endpoint mask: %s", got)
	}
	if got := sl.MaskCredential("alice@example.com"); !strings.HasPrefix(got, "al***#") || strings.Contains(got, "alice") {
		t.Errorf("credential mask: %s", got)
	}

	msg := sl.MaskLogMessage("Authorization: Basic YWxpY2U6c2VjcmV0 password=hunter2")
	if strings.Contains(msg, "YWxpY2U6c2VjcmV0") || strings.Contains(msg, "hunter2") {
		t.Errorf("secrets leaked: %s", msg)
	}

	sl.SafeError("request failed", errors.New("dial postgres://bob:pw@db/x"), map[string]interface{}{
		"password": "hunter2",
		"login":    "alice@example.com",
		"keywords": []string{"a", "b", "c", "d"},
	})
	out := buf.String()
	for _, leaked := range []string{"hunter2", "alice@example.com", "bob:pw"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaked %q: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "keywords_count=4") {
		t.Errorf("expected keyword summary in %s", out)
	}
}

func TestProgressReporter_ThrottlesUntilDone(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewWithWriter(Config{Level: "info"}, &buf))
	defer SetLogger(New(Config{Level: "warn"}))

	pr := NewProgressReporter(time.Hour)
	pr.Report(1, 10, "serp")
	pr.Report(2, 10, "serp")
	pr.Report(10, 10, "serp")

	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Errorf("expected first and final report only, got %d lines: %s", n, buf.String())
	}
}
