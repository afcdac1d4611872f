package models

import "fmt"

// HostType identifies which host table a polymorphic reference row belongs to.
// It is a closed enum; anything else fails the existence check.
type HostType string

const (
	HostTypeProduct   HostType = "product"
	HostTypeGame      HostType = "game"
	HostTypePublisher HostType = "publisher"
	HostTypeCreator   HostType = "creator"
)

// Valid reports whether t is one of the known host types.
func (t HostType) Valid() bool {
	switch t {
	case HostTypeProduct, HostTypeGame, HostTypePublisher, HostTypeCreator:
		return true
	}
	return false
}

// ParseHostType converts a path/payload value into a HostType.
func ParseHostType(s string) (HostType, error) {
	t := HostType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown host type %q", s)
	}
	return t, nil
}
