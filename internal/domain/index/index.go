// Package index holds index metadata and naming rules.
package index

import (
	"errors"
	"fmt"
	"strings"
)

// MaxNameLength is the cluster's 255-byte index name limit.
const MaxNameLength = 255

// Info is one _cat/indices record.
type Info struct {
	Health           string
	Status           string
	Name             string
	UUID             string
	Primaries        int
	Replicas         int
	DocsCount        int64
	DocsDeleted      int64
	StoreSize        string
	PrimaryStoreSize string
}

// ValidateName rejects names that cannot be routed. Everything else is left to the cluster.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("index name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("index name too long (max %d bytes)", MaxNameLength)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("index name %q must not contain '/'", name)
	}
	return nil
}
