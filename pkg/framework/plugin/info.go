package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Namespace is the UUID namespace processor UIDs are derived in
var Namespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("avgo.justyntemme.github.com"))

// Info contains processor metadata
type Info struct {
	ID       string // Unique identifier in reverse-DNS form (e.g. "com.example.gain")
	Name     string // Display name
	Version  string // Semantic version (e.g. "1.0.0")
	Vendor   string // Company/developer name
	Category string // Category (e.g. "Fx", "Analyzer", "Instrument")
}

// UID returns the name-based (version 5) UUID of the ID. Equal IDs always
// give equal UIDs.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(i.ID))
}

// ValidateUID checks that the ID can produce a stable UID
func (i Info) ValidateUID() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("plugin ID is empty")
	}
	if strings.ContainsAny(i.ID, " \t\n") {
		return fmt.Errorf("plugin ID %q contains whitespace", i.ID)
	}
	if i.UID() == uuid.Nil {
		return fmt.Errorf("plugin ID %q produced a nil UID", i.ID)
	}
	return nil
}

func (i Info) String() string {
	if i.Version == "" {
		return i.Name
	}
	return fmt.Sprintf("%s %s", i.Name, i.Version)
}
