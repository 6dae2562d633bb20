package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "debug", Format: "JSON"}, &buf)

	Component("scheduler").Debug("tick")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if line["component"] != "scheduler" || line["msg"] != "tick" {
		t.Errorf("unexpected entry: %v", line)
	}
}

func TestConfigure_BadLevelFallsBackToInfo(t *testing.T) {
	Configure(Options{Level: "loud"}, &bytes.Buffer{})
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", Log.GetLevel())
	}
}
