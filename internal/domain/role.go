package domain

import (
	"fmt"
	"strings"
)

type Side string

const (
	SideDefenders Side = "humans"
	SideInfected  Side = "zombies"
)

func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "humans", "humains", "defenders":
		return SideDefenders, nil
	case "zombies", "infected":
		return SideInfected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

func (s Side) Opponent() Side {
	if s == SideDefenders {
		return SideInfected
	}
	return SideDefenders
}

type Role int

const (
	RoleHumanDefender Role = iota + 1
	RoleFirstInfected
	RoleOtherInfected
)

func (r Role) String() string {
	switch r {
	case RoleHumanDefender:
		return "human"
	case RoleFirstInfected:
		return "first_infected"
	case RoleOtherInfected:
		return "infected"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r Role) Valid() bool {
	return r >= RoleHumanDefender && r <= RoleOtherInfected
}

// Side is the faction the role plays for when the match ends.
func (r Role) Side() Side {
	if r == RoleHumanDefender {
		return SideDefenders
	}
	return SideInfected
}

// ParseRole accepts the canonical names plus the labels stored by the legacy bot.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human", "humain", "defender":
		return RoleHumanDefender, nil
	case "first_infected", "firstz", "first_z":
		return RoleFirstInfected, nil
	case "infected", "zombie":
		return RoleOtherInfected, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}
