package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWipeByteArray(t *testing.T) {
	password := []byte("s3nh@-secreta")
	WipeByteArray(password)
	assert.Equal(t, make([]byte, len(password)), password)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestGenerateRandByteArray(t *testing.T) {
	salt := GenerateRandByteArray(16)
	require.Len(t, salt, 16)
	assert.NotEqual(t, salt, GenerateRandByteArray(16))

	assert.Empty(t, GenerateRandByteArray(0))
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Açaí Orgânico", "açaí", true},
		{"SUCO DE UVA", "uva", true},
		{"Suco", "leite", false},
		{"anything", "", true},
		{"", "x", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsFold(tt.s, tt.sub), "ContainsFold(%q, %q)", tt.s, tt.sub)
	}
}
