package imlearn

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubClock(t *testing.T, at time.Time) {
	t.Helper()
	old := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = old })
}

func TestSaveDataset_ArchiveNaming(t *testing.T) {
	stubClock(t, time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC))
	dir := t.TempDir()
	d := sampleBatch(1, "a")

	path, err := SaveDataset(dir, d, "policy_test", "iter3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data_20240301-123045_policy_test_iter3.json.gz"), path)

	path, err = SaveDataset(dir, d, "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data_20240301-123045.json.gz"), path)
}

func TestDataset_RoundTrip(t *testing.T) {
	// GIVEN a dataset with two fields of different dimensions
	d := NewDataset()
	require.NoError(t, d.Append(Observation{"a": {1}, "b": {2, 3}}, Action{4}, Action{5}, 6))
	require.NoError(t, d.Append(Observation{"a": {7}, "b": {8, 9}}, Action{10}, Action{11}, 12))

	// WHEN saving and loading it back
	dir := t.TempDir()
	path, err := SaveDataset(dir, d, "", "")
	require.NoError(t, err)
	loaded, err := LoadDataset(path)
	require.NoError(t, err)

	// THEN fields, alignment, and values all survive
	assert.Equal(t, d.Observations, loaded.Observations)
	assert.Equal(t, d.Targets, loaded.Targets)
	assert.Equal(t, d.Actions, loaded.Actions)
	assert.Equal(t, d.Rewards, loaded.Rewards)
	assertAligned(t, loaded)
}

func TestLoadDataset_TruncatedArchive(t *testing.T) {
	// GIVEN an archive with its gzip trailer cut off
	dir := t.TempDir()
	path, err := SaveDataset(dir, sampleBatch(3, "a"), "", "")
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-4], 0o644))

	// WHEN loading it
	_, err = LoadDataset(path)

	// THEN the missing checksum surfaces instead of silently loading
	require.Error(t, err)
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.json.gz"))
	require.Error(t, err)
}

func TestSaveDataset_EmptyDir(t *testing.T) {
	_, err := SaveDataset("", sampleBatch(1, "a"), "", "")
	require.ErrorContains(t, err, "empty directory")
}

func TestLoadDataset_LoadedDatasetExtends(t *testing.T) {
	// A loaded dataset must accept further batches over the same schema.
	d := sampleBatch(3, "a", "b")
	dir := t.TempDir()
	path, err := SaveDataset(dir, d, "", "")
	require.NoError(t, err)

	loaded, err := LoadDataset(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Extend(sampleBatch(2, "a", "b")))
	assert.Equal(t, 5, loaded.Len())
	assertAligned(t, loaded)
}
