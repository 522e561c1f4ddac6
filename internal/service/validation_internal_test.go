package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/member-crm/internal/config"
)

func TestNormalizePageSize(t *testing.T) {
	cfg := config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50}
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"zero uses default", 0, 10},
		{"negative uses default", -3, 10},
		{"within bounds kept", 25, 25},
		{"above max capped", 500, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizePageSize(tc.in, cfg))
		})
	}
	assert.Equal(t, 10, normalizePageSize(0, config.PaginationConfig{}), "unset config still yields a usable size")
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, newInvalidInput(nil))

	err := NewInvalidInputError(FieldError{Field: "page", Message: "must be a number"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []FieldError{{Field: "page", Message: "must be a number"}}, FieldErrors(err))
}
