package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid", input: "mia_01", want: "mia_01"},
		{name: "trimmed", input: "  mia_01 \n", want: "mia_01"},
		{name: "minimum length", input: "abc", want: "abc"},
		{name: "maximum length", input: "abcdefghij0123456789", want: "abcdefghij0123456789"},
		{name: "too short", input: "ab", wantErr: true},
		{name: "too long", input: "abcdefghij0123456789x", wantErr: true},
		{name: "hyphen", input: "mia-01", wantErr: true},
		{name: "space inside", input: "mia 01", wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeUsername(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation), "should wrap ErrValidation")
				assert.True(t, errors.Is(err, ErrInvalidUsername), "should wrap ErrInvalidUsername")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIdentityValidate(t *testing.T) {
	assert.NoError(t, Identity{Username: "mia_01"}.Validate())

	err := Identity{Username: "x"}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUsername)
}
