package process

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"/usr/local/bin/node":              "node",
		"node":                             "node",
		`C:\Program Files\nodejs\node.exe`: "node",
		"java.EXE":                         "java",
		"/opt/app/":                        Unknown,
		"":                                 Unknown,
		".exe":                             ".exe",
	}

	for command, want := range tests {
		assert.Equal(t, want, DisplayName(command), "command %q", command)
	}
}

func TestResolveCurrentProcess(t *testing.T) {
	id := NewResolver().Resolve(context.Background(), os.Getpid())

	assert.NotEqual(t, Unknown, id.Command)
	assert.NotEmpty(t, id.Name)
}

func TestResolveMissingProcess(t *testing.T) {
	// pid values this large are never allocated on supported platforms
	id := NewResolver().Resolve(context.Background(), 1<<30)

	assert.Equal(t, Identity{Command: Unknown, Name: Unknown}, id)
}

func TestSignalerAlive(t *testing.T) {
	s := NewSignaler()
	assert.True(t, s.Alive(context.Background(), os.Getpid()))
	assert.False(t, s.Alive(context.Background(), 1<<30))
}
