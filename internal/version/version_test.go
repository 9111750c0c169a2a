package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()
	assert.NotEmpty(t, s)
	assert.Contains(t, s, runtime.GOOS)
}

func TestStringWithCommit(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version = "v1.2.3"
	Commit = "abc1234"

	s := String()
	assert.Contains(t, s, "v1.2.3")
	assert.Contains(t, s, "abc1234")
}
