package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirPrefix(t *testing.T) {
	assert.Equal(t, "", DirPrefix(""))
	assert.Equal(t, "", DirPrefix("/"))
	assert.Equal(t, "snapshots/", DirPrefix("snapshots"))
	assert.Equal(t, "snapshots/", DirPrefix("/snapshots/"))
	assert.Equal(t, "data/snapshots/s1/", DirPrefix("/data/snapshots/s1"))
}

func TestBaseOfKey(t *testing.T) {
	assert.Equal(t, "f1", BaseOfKey("data/snapshots/s1/region/fam/f1"))
	assert.Equal(t, "f1", BaseOfKey("f1"))
	assert.Equal(t, "s1", BaseOfKey("data/snapshots/s1/"))
}

func TestBaseOfPrefix(t *testing.T) {
	assert.Equal(t, "s1", BaseOfPrefix("data/snapshots/s1/"))
	assert.Equal(t, "s1", BaseOfPrefix("s1/"))
}
