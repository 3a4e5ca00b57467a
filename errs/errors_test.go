package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindPredicates(t *testing.T) {
	for err, pred := range map[error]func(error) bool{
		New(KindConfig, "bad config"):         IsConfig,
		New(KindNaming, "bad name"):           IsNaming,
		New(KindPlan, "bad plan"):             IsPlan,
		New(KindUnknownVariant, "no variant"): IsUnknownVariant,
		New(KindExec, "exec failed"):          IsExec,
	} {
		assert.True(t, pred(err))
		assert.False(t, IsConfig(err) && IsNaming(err))
	}

	assert.False(t, IsConfig(errors.New("plain")))
	assert.False(t, IsConfig(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindExec, "executing CREATE TABLE", cause)

	assert.True(t, IsExec(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "executing CREATE TABLE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindNaming, "table %q is not invertible", "_User")
	outer := fmt.Errorf("loading hierarchy: %w", inner)

	require.True(t, IsNaming(outer))
	assert.False(t, IsConfig(outer))
}
