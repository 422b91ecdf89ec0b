package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/estesp/peek/errdefs"
	"github.com/estesp/peek/sampler"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedRun(n int) *sampler.Run {
	id := uuid.New()
	run := &sampler.Run{ID: id, PID: 99, State: sampler.StoppedByExit}
	for i := 0; i < n; i++ {
		run.Samples = append(run.Samples, sampler.Sample{
			RunID:     id,
			Sequence:  uint64(i),
			PID:       99,
			Name:      "target",
			CPU:       1.5,
			Mem:       2048,
			VirtMem:   8192,
			DiskRead:  3,
			DiskWrite: 4,
		})
	}
	return run
}

func TestFormatStrings(t *testing.T) {
	f, err := StringToFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)
	assert.Equal(t, "csv", FormatToString(CSV))

	_, err = StringToFormat("xml")
	assert.True(t, errdefs.IsConfiguration(err))

	d, err := StringToDestination("file")
	require.NoError(t, err)
	assert.Equal(t, File, d)
	assert.Equal(t, "stdout", DestinationToString(Stdout))

	_, err = StringToDestination("socket")
	assert.True(t, errdefs.IsConfiguration(err))
}

func TestJSONRecordShape(t *testing.T) {
	run := finishedRun(2)
	data, err := Render(JSON, run.Samples)
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, run.ID.String(), records[0]["uuid"])
	assert.EqualValues(t, 1, records[1]["sample"])
	assert.EqualValues(t, 99, records[1]["pid"])
	assert.Equal(t, "target", records[1]["name"])
	assert.EqualValues(t, 2048, records[1]["mem"])
	assert.EqualValues(t, 8192, records[1]["virt_mem"])
	assert.EqualValues(t, 3, records[1]["disk_read"])
	assert.EqualValues(t, 4, records[1]["disk_write"])
	assert.NotContains(t, records[0], "Timestamp")

	// field order follows the record definition
	line := string(data)
	order := []string{`"uuid"`, `"sample"`, `"pid"`, `"name"`, `"cpu"`, `"mem"`, `"virt_mem"`, `"disk_read"`, `"disk_write"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(line, key)
		require.Greater(t, idx, last, key)
		last = idx
	}
}

func TestJSONEmptyRun(t *testing.T) {
	data, err := Render(JSON, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestWriteStdout(t *testing.T) {
	var buf bytes.Buffer
	sink, err := New(Options{Format: JSON, Destination: Stdout, Stdout: &buf})
	require.NoError(t, err)

	require.NoError(t, sink.Write(finishedRun(3)))
	var records []sampler.Sample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	assert.Len(t, records, 3)

	err = sink.Write(finishedRun(1))
	assert.True(t, errdefs.IsOutput(err))
}

func TestWriteRefusesRunningRun(t *testing.T) {
	var buf bytes.Buffer
	sink, err := New(Options{Format: JSON, Destination: Stdout, Stdout: &buf})
	require.NoError(t, err)

	run := finishedRun(1)
	run.State = sampler.Running
	err = sink.Write(run)
	assert.True(t, errdefs.IsOutput(err))
	assert.Zero(t, buf.Len())

	// the refused run did not consume the sink
	run.State = sampler.StoppedByInterrupt
	assert.NoError(t, sink.Write(run))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink, err := New(Options{Format: JSON, Destination: File, Path: path})
	require.NoError(t, err)

	require.NoError(t, sink.Write(finishedRun(2)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []sampler.Sample
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 2)
}

func TestWriteFileDefaultPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	sink, err := New(Options{Format: JSON, Destination: File})
	require.NoError(t, err)
	require.NoError(t, sink.Write(finishedRun(1)))

	_, err = os.Stat(filepath.Join(dir, "peek.json"))
	assert.NoError(t, err)
}

func TestCSVNotImplementedCreatesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink, err := New(Options{Format: CSV, Destination: File, Path: path})
	require.NoError(t, err)

	err = sink.Write(finishedRun(2))
	require.Error(t, err)
	assert.True(t, errdefs.IsNotImplemented(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFileUncreatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.json")
	sink, err := New(Options{Format: JSON, Destination: File, Path: path})
	require.NoError(t, err)

	run := finishedRun(2)
	err = sink.Write(run)
	assert.True(t, errdefs.IsOutput(err))
	// collected data is untouched and can go to another sink
	assert.Len(t, run.Samples, 2)

	var buf bytes.Buffer
	retry, err := New(Options{Format: JSON, Destination: Stdout, Stdout: &buf})
	require.NoError(t, err)
	assert.NoError(t, retry.Write(run))
	assert.NotZero(t, buf.Len())
}
