// Package ids generates the human-facing identifiers of organizations and
// complaints.
//
// Identifiers are random, not sequential. Uniqueness is enforced by the
// database; callers retry with Generate when an insert hits a conflict.
package ids

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	OrganizationPrefix = "ORG-"
	ComplaintPrefix    = "CMP-"
)

// ErrExhausted is returned by Generate when every attempt conflicted.
var ErrExhausted = errors.New("ids: could not generate a unique identifier")

// randomHex returns n upper-case hex characters, n <= 12. The first 12 hex
// digits of a v4 UUID carry no version bits.
func randomHex(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:n])
}

// NewOrganizationID returns "ORG-" followed by 8 upper-case hex characters.
func NewOrganizationID() string {
	return OrganizationPrefix + randomHex(8)
}

// NewComplaintID returns "CMP-YYYY-ZZZZ": YYYY is the last 4 characters of
// the organization id's suffix, ZZZZ is random hex.
func NewComplaintID(orgUniqueID string) string {
	suffix := orgUniqueID[strings.LastIndex(orgUniqueID, "-")+1:]
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return ComplaintPrefix + suffix + "-" + randomHex(4)
}

// Generate calls create with fresh identifiers from next until create
// succeeds, fails with an error conflict does not recognise, or attempts run
// out.
func Generate(attempts int, next func() string, create func(id string) error, conflict func(error) bool) (string, error) {
	for i := 0; i < attempts; i++ {
		id := next()
		err := create(id)
		if err == nil {
			return id, nil
		}
		if !conflict(err) {
			return "", err
		}
	}
	return "", ErrExhausted
}
