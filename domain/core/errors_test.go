package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFamilies(t *testing.T) {
	assert.True(t, IsInvalidInputError(ErrEmptyDataset))
	assert.True(t, IsInvalidInputError(NewTooFewParticipantsError(1)))
	assert.True(t, IsInvalidInputError(NewNonFiniteError(3, "P1", math.NaN())))
	assert.True(t, IsInvalidInputError(NewUnparsableValueError(4, "abc")))
	assert.True(t, IsNotFoundError(NewColumnNotFoundError("variables", []string{"a"})))

	assert.False(t, IsInvalidInputError(ErrDegenerateData))
	assert.True(t, IsDegenerateDataError(NewDegenerateDataError(5)))
	assert.True(t, errors.Is(NewNonFiniteError(1, "P", math.Inf(1)), ErrNonFiniteValue))
}
