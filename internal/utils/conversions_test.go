package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimStrings(t *testing.T) {
	tests := []struct {
		name  string
		claim any
		want  []string
	}{
		{name: "missing", claim: nil, want: nil},
		{name: "single string", claim: "admin", want: []string{"admin"}},
		{name: "empty string", claim: "", want: nil},
		{name: "array", claim: []any{"organizer", 7, "admin", ""}, want: []string{"organizer", "admin"}},
		{name: "empty array", claim: []any{}, want: nil},
		{name: "no strings", claim: []any{1, true}, want: nil},
		{name: "string slice", claim: []string{"organizer"}, want: []string{"organizer"}},
		{name: "number", claim: 42.0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClaimStrings(tt.claim))
		})
	}
}
