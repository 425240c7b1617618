package ports

import (
	"goagree/domain/agreement"
)

// AgreementComputer computes repeated-measures agreement statistics for one dataset.
// Implementations must be safe for concurrent use on different datasets.
type AgreementComputer interface {
	Name() string
	Compute(data *agreement.Dataset) (*agreement.RBAResult, error)
}
