package domain

import "fmt"

// Mode is one of the two parallel product experiences.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeSenior Mode = "senior"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeNormal, ModeSenior}

// ParseMode converts a raw string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNormal, ModeSenior:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeNormal || m == ModeSenior
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == ModeSenior {
		return ModeNormal
	}
	return ModeSenior
}

// Home returns the route of the mode's home area.
func (m Mode) Home() string {
	return "/" + string(m) + "/home"
}

// LoginRoute returns the login surface for the mode.
func (m Mode) LoginRoute() string {
	if m == ModeSenior {
		return "/senior/login"
	}
	return "/login"
}

func (m Mode) String() string {
	return string(m)
}
