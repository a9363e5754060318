package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCanonicalID(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"v4 uuid", "9f1c8e4a-3b2d-4c5e-8f6a-1b2c3d4e5f60", true},
		{"uppercase v4", "9F1C8E4A-3B2D-4C5E-8F6A-1B2C3D4E5F60", true},
		{"wrong version nibble", "9f1c8e4a-3b2d-1c5e-8f6a-1b2c3d4e5f60", false},
		{"wrong variant nibble", "9f1c8e4a-3b2d-4c5e-0f6a-1b2c3d4e5f60", false},
		{"no dashes", "9f1c8e4a3b2d4c5e8f6a1b2c3d4e5f60", false},
		{"arbitrary token", "shopify_cust_1234", false},
		{"empty", "", false},
		{"numeric id", "42", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCanonicalID(tc.value))
		})
	}
}
