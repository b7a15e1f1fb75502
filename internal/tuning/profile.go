// SPDX-License-Identifier: MIT
package tuning

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Note is a target pitch of an instrument profile.
type Note struct {
	Label     string  `json:"label" yaml:"label"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
}

// Profile is an ordered table of target notes. Order matters: it breaks
// classification ties and is the display order.
type Profile struct {
	Name  string `json:"name" yaml:"name"`
	Notes []Note `json:"notes" yaml:"notes"`
}

// DefaultProfileName is used when no profile is configured.
const DefaultProfileName = "ukulele"

var builtinProfiles = []Profile{
	{
		Name: "ukulele",
		Notes: []Note{
			{"G4", 392.00},
			{"C4", 261.63},
			{"E4", 329.63},
			{"A4", 440.00},
		},
	},
	{
		Name: "ukulele-low-g",
		Notes: []Note{
			{"G3", 196.00},
			{"C4", 261.63},
			{"E4", 329.63},
			{"A4", 440.00},
		},
	},
	{
		Name: "guitar",
		Notes: []Note{
			{"E2", 82.41},
			{"A2", 110.00},
			{"D3", 146.83},
			{"G3", 196.00},
			{"B3", 246.94},
			{"E4", 329.63},
		},
	},
}

// BuiltinProfiles returns a copy of the built-in instrument profiles.
func BuiltinProfiles() []Profile {
	out := make([]Profile, len(builtinProfiles))
	for i, p := range builtinProfiles {
		out[i] = p.Clone()
	}
	return out
}

// LookupProfile resolves name against custom first, then the built-ins.
// Names compare case-insensitively.
func LookupProfile(name string, custom []Profile) (Profile, error) {
	for _, set := range [][]Profile{custom, builtinProfiles} {
		for _, p := range set {
			if strings.EqualFold(p.Name, name) {
				return p.Clone(), nil
			}
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Clone returns a deep copy so callers cannot alias the note table.
func (p Profile) Clone() Profile {
	return Profile{Name: p.Name, Notes: slices.Clone(p.Notes)}
}

// Labels returns the note labels in profile order.
func (p Profile) Labels() []string {
	labels := make([]string, len(p.Notes))
	for i, n := range p.Notes {
		labels[i] = n.Label
	}
	return labels
}

// Validate reports every problem with the profile at once.
func (p Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("profile name must not be empty"))
	}
	if len(p.Notes) == 0 {
		errs = append(errs, errors.New("profile must have at least one note"))
	}
	seen := make(map[string]bool, len(p.Notes))
	for i, n := range p.Notes {
		if n.Label == "" {
			errs = append(errs, fmt.Errorf("note %d: label must not be empty", i))
		} else if seen[n.Label] {
			errs = append(errs, fmt.Errorf("note %d: duplicate label %q", i, n.Label))
		}
		seen[n.Label] = true
		if n.Frequency <= 0 {
			errs = append(errs, fmt.Errorf("note %q: frequency must be positive, got %g", n.Label, n.Frequency))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidProfile, p.Name, errors.Join(errs...))
}
