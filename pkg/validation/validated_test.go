package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rvalid/pkg/validation"
)

func TestValidatedPrimitive(t *testing.T) {
	v := validation.NewValidated("")
	assert.Nil(t, v.Group())
	assert.True(t, v.IsValidatable())

	require.NoError(t, validation.AddRule(v.Observable, validation.RuleContext{Rule: "required"}))
	assert.False(t, v.IsValid())
	assert.Equal(t, []string{"This field is required."}, v.Errors())

	v.Set("x")
	assert.True(t, v.IsValid())
	assert.Empty(t, v.Errors())
}

func TestValidatedObjectTracksMembers(t *testing.T) {
	name := required(t, "")
	v := validation.NewValidated(map[string]any{"name": name})
	defer v.Dispose()

	require.NotNil(t, v.Group())
	assert.False(t, v.IsValid())

	name.Set("ann")
	assert.True(t, v.IsValid())
}

func TestValidatedRefreshesOnWrite(t *testing.T) {
	v := validation.NewValidated(map[string]any{"name": required(t, "ann")})
	defer v.Dispose()
	require.True(t, v.IsValid())

	email := required(t, "")
	v.Set(map[string]any{"email": email})
	assert.False(t, v.IsValid())
	assert.Equal(t, []*validation.Observable{email}, v.Group().Members())

	email.Set("ann@example.com")
	assert.True(t, v.IsValid())

	v.Set(42)
	assert.True(t, v.IsValid(), "a primitive value becomes an empty graph")
	assert.Empty(t, v.Group().Members())
}

func TestValidatedPrimitiveWithOptions(t *testing.T) {
	v := validation.NewValidated(nil, validation.WithDeep(true))
	defer v.Dispose()

	require.NotNil(t, v.Group())
	assert.True(t, v.IsValid())

	inner := required(t, "")
	v.Set(map[string]any{"nested": map[string]any{"inner": inner}})
	assert.False(t, v.IsValid())
}

func TestValidatedPullMode(t *testing.T) {
	cell := required(t, "")
	v := validation.NewValidated([]any{cell}, validation.WithMode(validation.ModePull))
	defer v.Dispose()
	assert.False(t, v.IsValid())

	cell.Set("x")
	assert.True(t, v.IsValid())
}
