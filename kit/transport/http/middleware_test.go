package http

import (
	"path"
	"testing"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/stretchr/testify/assert"
)

func Test_normalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "1",
			path:     path.Join("/api/v1/tenants", platform.ID(2).String()),
			expected: "/api/v1/tenants/:id",
		},
		{
			name:     "2",
			path:     "/api/v1/tenants",
			expected: "/api/v1/tenants",
		},
		{
			name:     "3",
			path:     "/",
			expected: "/",
		},
		{
			name:     "4",
			path:     path.Join("/api/v1/tenants", platform.ID(2).String(), "shards", platform.ID(3).String()),
			expected: "/api/v1/tenants/:id/shards/:id",
		},
		{
			name:     "5",
			path:     path.Join("/api/v1/tenants", platform.ID(2).String(), "documents"),
			expected: "/api/v1/tenants/:id/documents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := normalizePath(tt.path)
			assert.Equal(t, tt.expected, actual)
		})
	}
}
