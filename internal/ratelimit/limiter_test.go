package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyed_BurstThenDeny(t *testing.T) {
	k := NewKeyed(1, 2)

	assert.True(t, k.Allow("chat:1"))
	assert.True(t, k.Allow("chat:1"))
	assert.False(t, k.Allow("chat:1"))
}

func TestKeyed_KeysAreIndependent(t *testing.T) {
	k := NewKeyed(1, 1)

	assert.True(t, k.Allow("a"))
	assert.False(t, k.Allow("a"))
	assert.True(t, k.Allow("b"))
}

func TestKeyed_ClampsArguments(t *testing.T) {
	k := NewKeyed(0, 0)
	assert.True(t, k.Allow("x"))
	assert.False(t, k.Allow("x"))
}
