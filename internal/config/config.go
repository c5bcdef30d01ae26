// Package config validates the CLI-supplied parameters the core needs
// before it can start a mirror or networked session.
package config

import (
	"fmt"
	"net"
)

// Mode selects whether the core runs the local-only mirror loop or a
// networked session.
type Mode int

const (
	ModeMirror Mode = iota
	ModeNetwork
)

// View selects how a networked session composites the peer's and the
// local camera's frames.
type View int

const (
	ViewPiP View = iota
	ViewSplit
)

// Role selects which side of a networked session we are.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// Config is the validated struct the core consumes; nothing below
// this layer re-parses flags or re-prompts the user.
type Config struct {
	Mode   Mode
	View   View
	Role   Role
	Port   int
	PeerIP string
	Camera string
	// Density is a literal ramp string, "ascii-default", or
	// "unicode-default"; empty means auto-detect from the locale.
	Density string
}

// Validate checks that Config's fields are self-consistent and within
// range, returning a descriptive error for the first problem found.
func (c Config) Validate() error {
	if c.Mode == ModeNetwork {
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("config: port %d out of range [1, 65535]", c.Port)
		}
		if c.Role == RoleClient {
			if c.PeerIP == "" {
				return fmt.Errorf("config: client role requires --ip")
			}
			if ip := net.ParseIP(c.PeerIP); ip == nil || ip.To4() == nil {
				return fmt.Errorf("config: %q is not a valid IPv4 address", c.PeerIP)
			}
		}
	}
	if c.Camera == "" {
		return fmt.Errorf("config: camera identifier is required")
	}
	return nil
}
