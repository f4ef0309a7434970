package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnores(t *testing.T) {
	c := New([]uint16{5353, 7000}, []string{"java", "ControlCe"})

	assert.True(t, c.Ignores(5353, "node"))
	assert.True(t, c.Ignores(3000, "java"))
	assert.False(t, c.Ignores(3000, "node"))
	assert.False(t, c.Ignores(3000, "Java"), "name match is case-sensitive")
	assert.False(t, c.Empty())
}

func TestNewDropsBlankNames(t *testing.T) {
	c := New(nil, []string{"", "  "})
	assert.True(t, c.Empty())
	assert.False(t, c.Process(""))
}

func TestMerge(t *testing.T) {
	merged := New([]uint16{5000}, []string{"Chrome"}).Merge(New([]uint16{5353, 5000}, []string{"node"}))

	assert.Equal(t, []uint16{5000, 5353}, merged.Ports())
	assert.Equal(t, []string{"Chrome", "node"}, merged.Processes())
}

func TestString(t *testing.T) {
	assert.Equal(t, "", New(nil, nil).String())
	assert.Equal(t, "ignoring ports: 5000, 5353, ignoring processes: Chrome, ControlCe",
		New([]uint16{5353, 5000}, []string{"ControlCe", "Chrome"}).String())
}
