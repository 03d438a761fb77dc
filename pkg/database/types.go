// pkg/database/types.go

package database

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/serentry/dbvault/pkg/dberr"
)

// DBType enumerates the supported database kinds. Free-form type strings
// from flags or files are converted exactly once, at the input boundary,
// via ParseDBType; everything past that boundary works with the
// enumeration.
type DBType int

const (
	Postgres DBType = iota
	MySQL
	Redis
)

// String returns the canonical identifier used in the vault file and in
// log output.
func (t DBType) String() string {
	switch t {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case Redis:
		return "redis"
	default:
		return "unknown"
	}
}

// ParseDBType converts an external type string into the enumeration.
// Unknown identifiers are rejected here, not deep inside provisioning.
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "redis":
		return Redis, nil
	default:
		return 0, dberr.MarkUserError(
			fmt.Errorf("%w: %q (supported: postgres, mysql, redis)", dberr.ErrUnsupportedType, s))
	}
}

// MarshalJSON stores the canonical identifier, not the numeric value, so
// the vault file stays readable and stable across reorderings.
func (t DBType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the canonical identifier through the same boundary
// check as external input.
func (t *DBType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDBType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// AllTypes lists every supported database kind in registry order.
func AllTypes() []DBType {
	return []DBType{Postgres, MySQL, Redis}
}

// Credentials is the plain credential set for one database instance.
// It is never persisted unencrypted.
type Credentials struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Database     string `json:"database"`
	Port         uint16 `json:"port"`
	RootPassword string `json:"root_password,omitempty"`
}
