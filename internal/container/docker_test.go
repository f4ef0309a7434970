package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopPIDs(t *testing.T) {
	titles := []string{"UID", "PID", "PPID", "C", "STIME", "TTY", "TIME", "CMD"}
	rows := [][]string{
		{"root", "4242", "4200", "0", "10:00", "?", "00:00:01", "node server.js"},
		{"root", "4250", "4242", "0", "10:00", "?", "00:00:00", "sh"},
		{"root", "n/a"},
	}

	pids, err := topPIDs(titles, rows)
	require.NoError(t, err)
	assert.Equal(t, []int{4242, 4250}, pids)
}

func TestTopPIDsWithoutPIDColumn(t *testing.T) {
	_, err := topPIDs([]string{"USER", "COMMAND"}, nil)
	assert.Error(t, err)
}
