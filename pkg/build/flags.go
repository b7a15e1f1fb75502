// SPDX-License-Identifier: MIT
//
// Package build carries the metadata stamped into the tuner binary at link
// time:
//
//	go build -ldflags "-X tuner/pkg/build.buildName=tuner \
//	    -X tuner/pkg/build.buildVersion=v0.3.0 ..."
//
// Development builds run without the flags and report "dev" values.
package build

import (
	"errors"
	"fmt"
)

// ErrMissingFlags is returned by Initialize when the binary was built
// without the release ldflags.
var ErrMissingFlags = errors.New("build flags missing")

// Info describes the running binary.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String renders the version line printed by --version.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

const description = "Real-time instrument string tuner (HPS pitch detection)"

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var info = Info{
	Name:        "tuner",
	Description: description,
	Time:        "dev",
	Commit:      "dev",
	Version:     "dev",
}

// Initialize copies the ldflags values into the build info. Every missing
// flag is reported; the development defaults stay in place for those
// fields so the binary remains usable.
func Initialize() error {
	var missing []string
	set := func(dst *string, v, flag string) {
		if v == "" {
			missing = append(missing, flag)
			return
		}
		*dst = v
	}

	set(&info.Name, buildName, "buildName")
	set(&info.Time, buildTime, "buildTime")
	set(&info.Commit, buildCommit, "buildCommit")
	set(&info.Version, buildVersion, "buildVersion")

	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingFlags, missing)
	}
	return nil
}

// Get returns the current build info.
func Get() Info {
	return info
}
