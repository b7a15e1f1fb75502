// SPDX-License-Identifier: MIT
package build

import (
	"errors"
	"os"
	"strings"
	"testing"
)

var origInfo Info

func TestMain(m *testing.M) {
	origInfo = info
	exitCode := m.Run()
	info = origInfo
	os.Exit(exitCode)
}

func setFlags(name, tm, commit, version string) {
	buildName, buildTime, buildCommit, buildVersion = name, tm, commit, version
	info = origInfo
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		flags       [4]string
		wantMissing []string
	}{
		{"all missing", [4]string{}, []string{"buildName", "buildTime", "buildCommit", "buildVersion"}},
		{"missing commit", [4]string{"tuner", "2026-10-01", "", "v1.0.0"}, []string{"buildCommit"}},
		{"missing version", [4]string{"tuner", "2026-10-01", "abc123", ""}, []string{"buildVersion"}},
		{"complete", [4]string{"tuner", "2026-10-01", "abc123", "v1.0.0"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(tt.flags[0], tt.flags[1], tt.flags[2], tt.flags[3])

			err := Initialize()
			if len(tt.wantMissing) == 0 {
				if err != nil {
					t.Fatalf("Initialize() unexpected error: %v", err)
				}
				got := Get()
				if got.Name != "tuner" || got.Version != "v1.0.0" || got.Commit != "abc123" {
					t.Errorf("Get() = %+v", got)
				}
				return
			}

			if !errors.Is(err, ErrMissingFlags) {
				t.Fatalf("Initialize() error = %v, want ErrMissingFlags", err)
			}
			for _, flag := range tt.wantMissing {
				if !strings.Contains(err.Error(), flag) {
					t.Errorf("error %q does not mention %s", err, flag)
				}
			}
		})
	}
}

func TestDevDefaultsSurviveMissingFlags(t *testing.T) {
	setFlags("", "", "", "")
	_ = Initialize()

	got := Get()
	if got.Name != "tuner" || got.Version != "dev" {
		t.Errorf("Get() = %+v, want development defaults", got)
	}
	if got.Description == "" {
		t.Error("description should never be empty")
	}
	if !strings.HasPrefix(got.String(), "tuner dev") {
		t.Errorf("String() = %q", got.String())
	}
}
