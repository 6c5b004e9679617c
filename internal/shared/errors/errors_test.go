package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, GetType(Validation("bad")))
	assert.Equal(t, ErrorTypeNotFound, GetType(fmt.Errorf("lookup: %w", NotFoundf("tile %d", 3))))
	assert.Equal(t, ErrorTypeInternal, GetType(fmt.Errorf("plain")))
}

func TestRejectedCarriesDetails(t *testing.T) {
	cause := fmt.Errorf("occupied")
	err := Rejected("placement rejected", cause, map[string]string{"reason": "occupied"})

	assert.Equal(t, ErrorTypeRejected, GetType(err))
	assert.Equal(t, map[string]string{"reason": "occupied"}, GetDetails(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "placement rejected: occupied", err.Error())

	assert.Nil(t, GetDetails(fmt.Errorf("plain")))
}
