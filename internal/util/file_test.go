package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "one-piece", "one-piece"},
		{"underscores kept", "kaguya_sama", "kaguya_sama"},
		{"spaces dropped", "one piece", "onepiece"},
		{"path separators dropped", "../evil/slug", "evilslug"},
		{"unicode dropped", "abc™def", "abcdef"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSlug(tt.in))
		})
	}
}

func TestExtensionFromContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want string
	}{
		{"image/jpeg", "jpg"},
		{"image/jpg", "jpg"},
		{"IMAGE/JPEG", "jpg"},
		{"image/png", "png"},
		{"image/webp", "webp"},
		{"image/gif", "gif"},
		{"image/jpeg; charset=utf-8", "jpg"},
		{"application/octet-stream", "png"},
		{"", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.ct, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionFromContentType(tt.ct))
		})
	}
}

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.00 KB", Human(1024))
	assert.Equal(t, "2.50 MB", Human(int64(2.5*(1<<20))))
	assert.Equal(t, "1.00 GB", Human(1<<30))
}
