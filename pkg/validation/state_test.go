package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rvalid/pkg/reactive"
	"github.com/vango-dev/rvalid/pkg/validation"
)

// newRegistry returns an isolated registry with a failing rule and a rule
// that counts its calls.
func newRegistry(t *testing.T) (*validation.Registry, *int) {
	t.Helper()
	reg := validation.NewRegistry()
	calls := 0
	require.NoError(t, reg.Register("fail", func(any, any) bool { return false }, "failed with {0}"))
	require.NoError(t, reg.Register("count", func(any, any) bool {
		calls++
		return true
	}, "counted"))
	return reg, &calls
}

func TestShortCircuitStopsAtFirstFailure(t *testing.T) {
	reg, calls := newRegistry(t)
	cell := validation.NewObservable("value")

	require.NoError(t, reg.AddRule(cell, validation.RuleContext{Rule: "count"}))
	require.NoError(t, reg.AddRule(cell, validation.RuleContext{Rule: "fail", Params: 7}))
	require.NoError(t, reg.AddRule(cell, validation.RuleContext{Rule: "count"}))

	assert.False(t, cell.IsValid())
	assert.Equal(t, "failed with 7", cell.Error())
	assert.Equal(t, 1, *calls, "rules after the failing one are not evaluated")
}

func TestMessageOverride(t *testing.T) {
	reg, _ := newRegistry(t)
	cell := validation.NewObservable("")

	require.NoError(t, reg.AddRule(cell, validation.RuleContext{
		Rule:    "fail",
		Params:  "x",
		Message: "custom {0}",
	}))
	assert.Equal(t, "custom x", cell.Error())
}

func TestAttachIsIdempotent(t *testing.T) {
	cell := validation.NewObservable("")
	first := validation.Attach(cell)
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "required"}))
	cell.Set("x")
	require.True(t, cell.IsModified())

	second := validation.Attach(cell)
	assert.Same(t, first, second)
	assert.Len(t, cell.Rules(), 1, "attaching again keeps the rules")
	assert.True(t, cell.IsModified(), "attaching again keeps the modified flag")
}

func TestModifiedIsMonotonic(t *testing.T) {
	cell := validation.NewObservable("a")
	validation.Attach(cell)
	assert.False(t, cell.IsModified())

	cell.Set("b")
	assert.True(t, cell.IsModified())

	cell.Set("a")
	validation.Attach(cell)
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "required"}))
	cell.ClearRules()
	assert.True(t, cell.IsModified())
}

func TestWriteOfEqualPrimitiveDoesNotModify(t *testing.T) {
	cell := validation.NewObservable("a")
	validation.Attach(cell)

	cell.Set("a")
	assert.False(t, cell.IsModified())

	list := validation.NewObservable([]any{1})
	validation.Attach(list)
	list.Set([]any{1})
	assert.True(t, list.IsModified(), "composite values always count as a write")
}

func TestEndToEndRequiredMinLength(t *testing.T) {
	cell := validation.NewObservable("")
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "required", Params: true}))
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "minLength", Params: 3}))

	assert.False(t, cell.IsValid())
	assert.Equal(t, "This field is required.", cell.Error())
	assert.False(t, cell.IsModified())

	cell.Set("ab")
	assert.False(t, cell.IsValid())
	assert.Equal(t, "Please enter at least 3 characters.", cell.Error())
	assert.True(t, cell.IsModified())

	cell.Set("abc")
	assert.True(t, cell.IsValid())
	assert.Empty(t, cell.Error())
	assert.True(t, cell.IsModified())
}

func TestErrorWithoutPriorIsValidCall(t *testing.T) {
	cell := validation.NewObservable("")
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "required"}))
	assert.Equal(t, "This field is required.", cell.Error())
}

func TestParamsFromOtherCell(t *testing.T) {
	password := validation.NewObservable("secret")
	confirm := validation.NewObservable("secret")
	require.NoError(t, validation.AddRule(confirm, validation.RuleContext{Rule: "equal", Params: password}))
	assert.True(t, confirm.IsValid())

	password.Set("changed")
	assert.False(t, confirm.IsValid(), "validity follows the referenced cell")
	assert.False(t, confirm.IsModified(), "changes of a parameter do not modify the cell")
}

func TestParamsFromCallback(t *testing.T) {
	limit := validation.NewObservable(5)
	cell := validation.NewObservable(4)
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{
		Rule:   "max",
		Params: func() any { return limit },
	}))
	assert.True(t, cell.IsValid())

	limit.Set(3)
	assert.False(t, cell.IsValid())
	assert.Equal(t, "Please enter a value less than or equal to 3.", cell.Error())
}

func TestNilParamsDefaultToTrue(t *testing.T) {
	reg := validation.NewRegistry()
	var got any
	require.NoError(t, reg.Register("capture", func(_, params any) bool {
		got = params
		return true
	}, ""))

	cell := validation.NewObservable(1)
	require.NoError(t, reg.AddRule(cell, validation.RuleContext{Rule: "capture"}))
	cell.IsValid()
	assert.Equal(t, true, got)
}

func TestParamsFromNilCell(t *testing.T) {
	password := validation.NewObservable(nil)
	confirm := validation.NewObservable(nil)
	require.NoError(t, validation.AddRule(confirm, validation.RuleContext{Rule: "equal", Params: password}))
	assert.True(t, confirm.IsValid(), "a referenced nil is passed as nil")
	assert.Empty(t, confirm.Error())

	confirm.Set("secret")
	assert.False(t, confirm.IsValid())
	assert.Equal(t, "values must equal", confirm.Error())

	password.Set("secret")
	assert.True(t, confirm.IsValid())
}

func TestParamsFromCallbackReturningNil(t *testing.T) {
	reg := validation.NewRegistry()
	var got any = "unset"
	require.NoError(t, reg.Register("capture", func(_, params any) bool {
		got = params
		return true
	}, ""))

	cell := validation.NewObservable(1)
	require.NoError(t, reg.AddRule(cell, validation.RuleContext{
		Rule:   "capture",
		Params: func() any { return nil },
	}))
	cell.IsValid()
	assert.Nil(t, got)
}

func TestRulesChangeRevalidates(t *testing.T) {
	cell := validation.NewObservable("ab")
	validation.Attach(cell)
	assert.True(t, cell.IsValid())

	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "minLength", Params: 3}))
	assert.False(t, cell.IsValid())

	cell.ClearRules()
	assert.True(t, cell.IsValid())
	assert.True(t, cell.IsValidatable())
}

func TestDetach(t *testing.T) {
	cell := validation.NewObservable("")
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "required"}))
	require.False(t, cell.IsValid())

	validation.Detach(cell)
	assert.False(t, cell.IsValidatable())
	assert.Nil(t, cell.State())
	assert.True(t, cell.IsValid())
	assert.Empty(t, cell.Error())
	assert.Empty(t, cell.Rules())

	cell.Set("x")
	assert.False(t, cell.IsModified(), "the change subscription is gone")

	validation.Detach(cell)
	validation.Detach(validation.NewObservable(1))
}

func TestReattachStartsFresh(t *testing.T) {
	cell := validation.NewObservable("")
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "required"}))
	cell.Set("x")
	validation.Detach(cell)

	validation.Attach(cell)
	assert.False(t, cell.IsModified())
	assert.Empty(t, cell.Rules())
}

func TestUnknownRule(t *testing.T) {
	reg, _ := newRegistry(t)
	cell := validation.NewObservable("")

	err := reg.AddRule(cell, validation.RuleContext{Rule: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrUnknownRule))
	assert.Empty(t, cell.Rules())
}

func TestRuleRemovedAfterAttachPanics(t *testing.T) {
	reg, _ := newRegistry(t)
	cell := validation.NewObservable("")
	require.NoError(t, reg.AddRule(cell, validation.RuleContext{Rule: "fail"}))
	reg.Unregister("fail")

	assert.PanicsWithError(t, `V001: Unknown validation rule: rule "fail" is not registered`, func() {
		cell.IsValid()
	})
}

func TestValidityIsReactive(t *testing.T) {
	cell := validation.NewObservable("")
	require.NoError(t, validation.AddRule(cell, validation.RuleContext{Rule: "required"}))

	var seen []bool
	effect := reactive.CreateEffect(func() reactive.Cleanup {
		seen = append(seen, cell.IsValid())
		return nil
	})
	defer effect.Dispose()

	cell.Set("x")
	cell.Set("")
	assert.Equal(t, []bool{false, true, false}, seen)
}
