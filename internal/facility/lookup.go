// Package facility resolves building tokens from a schedule to street addresses.
package facility

import (
	"strings"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

// DefaultCity is appended to every resolved street address
const DefaultCity = "Madison, WI 53715"

// Building is one row of the facilities table
type Building struct {
	Name          string
	StreetAddress string
}

// Lookup matches building tokens against building names.
//
// Matching is case-sensitive substring containment on Name. When several rows
// contain the token, the first row in table order wins.
type Lookup struct {
	rows []Building
	city string
}

// NewLookup creates a lookup over rows. Row order is preserved.
func NewLookup(rows []Building, city string) *Lookup {
	if city == "" {
		city = DefaultCity
	}
	return &Lookup{rows: rows, city: city}
}

// Resolve returns "<street address>, <city>" for the first building whose
// name contains token.
func (l *Lookup) Resolve(token string) (string, error) {
	if token == "" {
		return "", serrors.New(serrors.KindBuildingNotFound, "building not found: empty token")
	}
	for _, b := range l.rows {
		if strings.Contains(b.Name, token) {
			return b.StreetAddress + ", " + l.city, nil
		}
	}
	return "", serrors.Newf(serrors.KindBuildingNotFound, "building not found", "%q", token)
}

// Len returns the number of buildings in the table
func (l *Lookup) Len() int {
	return len(l.rows)
}
