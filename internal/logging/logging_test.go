package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "production").Info("login failed", "user_id", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "login failed" || entry["user_id"] != float64(7) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestDevelopmentLoggerIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "development").Debug("cache miss", "post_id", 3)
	if !strings.Contains(buf.String(), "post_id=3") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
