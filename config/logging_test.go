package config

import (
	"path/filepath"
	"testing"
)

func TestLogFilePath(t *testing.T) {
	t.Setenv("LOG_FILE", "")
	if got, want := LogFilePath(), filepath.Join("logs", "lab-api.log"); got != want {
		t.Errorf("default LogFilePath = %q, want %q", got, want)
	}

	t.Setenv("LOG_FILE", "/var/log/lab/api.log")
	if got := LogFilePath(); got != "/var/log/lab/api.log" {
		t.Errorf("LogFilePath with LOG_FILE = %q", got)
	}
}
