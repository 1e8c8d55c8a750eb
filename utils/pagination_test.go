package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		name              string
		page, limit       string
		wantPage, wantLim int
		wantOffset        int
	}{
		{"defaults", "", "", 1, 10, 0},
		{"second page", "2", "5", 2, 5, 5},
		{"negative", "-3", "-1", 1, 10, 0},
		{"capped", "1", "1000", 1, MaxPageLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, offset := PageParams(tt.page, tt.limit, 10)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLim, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}

	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 3, TotalPages(21, 10))
}
