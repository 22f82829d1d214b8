// Package ids generates request identifiers for log correlation.
package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable request id.
func New() string {
	return ulid.Make().String()
}
