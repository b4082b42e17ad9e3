package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raglab/deeprag/pkg/apperr"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(apperr.Validationf("bad input")))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFoundf("missing")))
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(apperr.Configurationf("broken")))
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(apperr.Externalf("down")))

	// Unclassified errors are treated as provider failures.
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("query failed: %w", apperr.Validationf("question is required"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestExternalPreservesCause(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := apperr.External("embedding request failed", cause)

	assert.True(t, errors.Is(err, cause))
	var e *apperr.Error
	assert.True(t, errors.As(err, &e))
	assert.Contains(t, e.Details(), "context deadline exceeded")
}

func TestErrorMessage(t *testing.T) {
	err := apperr.NotFoundf("unknown tool: %s", "nope")
	assert.Contains(t, err.Error(), "unknown tool: nope")
	assert.Contains(t, err.Error(), "not found")
}
