package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-crm-session/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 0, utils.Value[int](nil))
	require.Equal(t, "A1", utils.Value(utils.Ptr("A1")))
}

func TestPtr_Copies(t *testing.T) {
	s := "A1"
	p := utils.Ptr(s)
	s = "A2"
	require.Equal(t, "A1", *p)
}

func TestNonEmpty(t *testing.T) {
	require.Nil(t, utils.NonEmpty(""))

	p := utils.NonEmpty("R1")
	require.NotNil(t, p)
	require.Equal(t, "R1", *p)
}
