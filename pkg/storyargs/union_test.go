package storyargs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUnion(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		want     []string
		wantOK   bool
	}{
		{
			name:     "three literals",
			typeName: "'a' | 'b' | 'c'",
			want:     []string{"a", "b", "c"},
			wantOK:   true,
		},
		{
			name:     "order preserved and duplicates kept",
			typeName: "'lg' | 'sm' | 'lg'",
			want:     []string{"lg", "sm", "lg"},
			wantOK:   true,
		},
		{
			name:     "dollar and digits",
			typeName: "'$x1' | 'h2'",
			want:     []string{"$x1", "h2"},
			wantOK:   true,
		},
		{
			name:     "later members may contain dashes",
			typeName: "'primary' | 'outline-primary'",
			want:     []string{"primary", "outline-primary"},
			wantOK:   true,
		},
		{
			name:     "type tag",
			typeName: "func",
		},
		{
			name:     "single literal",
			typeName: "'a'",
		},
		{
			name:     "no space before pipe",
			typeName: "'a'|'b'",
		},
		{
			name:     "mixed with other types",
			typeName: "'a' | number",
		},
		{
			name:     "mixed with null",
			typeName: "'start' | 'end' | null",
		},
		{
			name:     "empty",
			typeName: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseUnion(tc.typeName)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
