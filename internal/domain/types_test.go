package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray{"actor", "producer"}.Value()
	require.NoError(t, err)
	require.Equal(t, `["actor","producer"]`, v)

	v, err = StringArray(nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)
}

func TestStringArrayScan(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`["drama","comedy"]`)))
	require.Equal(t, StringArray{"drama", "comedy"}, a)

	require.NoError(t, a.Scan(`["actor"]`))
	require.Equal(t, StringArray{"actor"}, a)

	require.NoError(t, a.Scan(nil))
	require.Empty(t, a)

	require.Error(t, a.Scan(42))
}

func TestStringArrayContains(t *testing.T) {
	a := StringArray{"actor", "soundtrack"}
	require.True(t, a.Contains("actor"))
	require.False(t, a.Contains("act"))
}
