package quote

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newMatchers(t *testing.T) *matchers {
	t.Helper()
	m, err := DefaultVocabulary().compile()
	require.NoError(t, err)
	return m
}

func val[T any](t *testing.T, v *T) T {
	t.Helper()
	require.NotNil(t, v)
	return *v
}
