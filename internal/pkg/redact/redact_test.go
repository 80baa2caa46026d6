package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", Token(""))
	require.Equal(t, "[REDACTED_TOKEN]", Token("eyJhbGciOi.x.y"))
}

func TestUsername_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii", in: "bob", want: "b***"},
		{name: "two_runes", in: "ab", want: "a***"},
		{name: "single_rune", in: "a", want: "***"},
		{name: "empty", in: "", want: "***"},
		{name: "unicode", in: "юзер", want: "ю***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Username(tt.in))
		})
	}
}
