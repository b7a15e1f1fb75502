// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   LogLevel
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{" INFO ", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(GetLevel())

	SetLevel(LevelWarn)
	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("Engine: shown %d", 3)
	Error("Engine: shown", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "[WARN]  Engine: shown 3") {
		t.Errorf("missing warn line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] Engine: shown4") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestEnabled(t *testing.T) {
	defer SetLevel(GetLevel())

	SetLevel(LevelInfo)
	if Enabled(LevelDebug) {
		t.Error("debug should be disabled at INFO")
	}
	if !Enabled(LevelError) {
		t.Error("error should be enabled at INFO")
	}
}
