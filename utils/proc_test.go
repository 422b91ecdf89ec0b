package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcSelf(t *testing.T) {
	p, err := NewProcFromPID(os.Getpid())
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), p.PID())

	name, err := p.Name()
	require.NoError(t, err)
	assert.NotEmpty(t, name)

	rss, err := p.Mem()
	require.NoError(t, err)
	assert.NotZero(t, rss)

	vms, err := p.VirtMem()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, vms, rss)

	_, err = p.CPU()
	assert.NoError(t, err)
}

func TestPIDExists(t *testing.T) {
	exists, err := PIDExists(os.Getpid())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PIDExists(0)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = PIDExists(-5)
	require.NoError(t, err)
	assert.False(t, exists)
}
