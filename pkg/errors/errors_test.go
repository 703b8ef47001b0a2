package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, CodeInternal, "create entity failed")

	require.True(t, stderrors.Is(err, cause))
	require.True(t, IsCode(err, CodeInternal))
	require.Equal(t, "internal: create entity failed: boom", err.Error())
}

func TestWrapNilBehavesLikeNew(t *testing.T) {
	err := Wrap(nil, CodeNotFound, "company not found")
	require.Nil(t, err.Err)
	require.Equal(t, "not_found: company not found", err.Error())
}

func TestConstraintNameThroughChain(t *testing.T) {
	inner := Constraint("ux_companies_code", "company code already exists")
	outer := Wrap(inner, CodeMigrationFailed, "step failed").WithMeta(MetaStep, "create_index")
	wrapped := fmt.Errorf("apply: %w", outer)

	require.Equal(t, "ux_companies_code", ConstraintName(wrapped))
	require.Equal(t, "create_index", MetaString(wrapped, MetaStep))
	require.Equal(t, CodeMigrationFailed, CodeOf(wrapped))
	require.True(t, IsCode(inner, CodeConstraint))
}

func TestCodeOfPlainError(t *testing.T) {
	require.Equal(t, CodeUnknown, CodeOf(stderrors.New("plain")))
	require.Empty(t, ConstraintName(stderrors.New("plain")))
}
