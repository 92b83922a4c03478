package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_BasicCRUD(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "basic_crud"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestGolden_OwnerGate(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "owner_gate"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
