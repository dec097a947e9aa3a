package key

import (
	"context"
)

// Source lists the key records a run should evaluate. Implementations load
// them from the CSV manifest in object storage or from a database table.
// A Source failure is fatal to the run; row-level problems are reported
// through the Manifest counters instead.
type Source interface {
	Load(ctx context.Context) (*Manifest, error)
}
