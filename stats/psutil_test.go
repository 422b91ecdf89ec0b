//go:build linux

package stats

import (
	"os"
	"os/exec"
	"testing"

	"github.com/estesp/peek/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPSUtilProviderSelf(t *testing.T) {
	provider, err := NewPSUtilProvider()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, provider.Threads(), 1)

	pid := os.Getpid()
	exists, err := provider.Exists(pid)
	require.NoError(t, err)
	assert.True(t, exists)

	first, err := provider.Query(pid)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Name)
	assert.NotZero(t, first.RSS)
	assert.GreaterOrEqual(t, first.VMS, first.RSS)

	second, err := provider.Query(pid)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second.CPU, 0.0)
	assert.GreaterOrEqual(t, second.DiskRead, first.DiskRead)
}

func TestPSUtilProviderMissingProcess(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	pid := cmd.Process.Pid

	provider := newPSUtilProvider(1)
	exists, err := provider.Exists(pid)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = provider.Query(pid)
	require.Error(t, err)
	assert.True(t, errdefs.IsNoSuchProcess(err))
}

func TestPSUtilProviderProcessGoneAfterFirstQuery(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid

	provider := newPSUtilProvider(1)
	_, err := provider.Query(pid)
	require.NoError(t, err)

	require.NoError(t, cmd.Process.Kill())
	_ = cmd.Wait()

	_, err = provider.Query(pid)
	require.Error(t, err)
	assert.True(t, errdefs.IsNoSuchProcess(err))
}
