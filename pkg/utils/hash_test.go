package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHexSHA256(t *testing.T) {
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HexSHA256(nil))
	require.Equal(t, HexSHA256([]byte("a")), HexSHA256([]byte("a")))
	require.NotEqual(t, HexSHA256([]byte("a")), HexSHA256([]byte("b")))
}
