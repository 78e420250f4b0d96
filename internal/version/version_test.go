package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = oldVersion, oldCommit })

	Version = "1.4.2"
	GitCommit = "abc123"

	info := Get()
	assert.Equal(t, "1.4.2", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
