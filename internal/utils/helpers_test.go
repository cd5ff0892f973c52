package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayString(t *testing.T) {
	d := time.Date(2026, 8, 29, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "2026-08-29", DayString(d))
	assert.Equal(t, "2026-08-28", YesterdayOf(d))

	// passage de mois
	first := time.Date(2026, 9, 1, 0, 0, 1, 0, time.Local)
	assert.Equal(t, "2026-08-31", YesterdayOf(first))
}

func TestMaskNickname(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "用**"},
		{"张", "张**"},
		{"张伟", "张**"},
		{"张伟明", "张*明"},
		{"helpeuse", "h******e"},
		{"ab", "a**"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MaskNickname(c.in), c.in)
	}
}
