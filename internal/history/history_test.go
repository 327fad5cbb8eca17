// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docx-t2s/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "history")
	s, err := Open(types.HistoryConfig{Dir: dir, MaxResults: 10})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func sampleTasks() []types.ConversionTask {
	return []types.ConversionTask{
		{InputPath: "a.docx", OutputPath: "a_简体.docx", Status: types.TaskCompleted, ConvertedChars: 5},
		{InputPath: "missing.docx", OutputPath: "missing_简体.docx", Status: types.TaskFailed, ErrorMessage: "file not found: missing.docx"},
		{InputPath: "b.doc", OutputPath: "b_简体.docx", Status: types.TaskCompleted, ConvertedChars: 2},
	}
}

func TestRecordAndGet(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run, err := s.Record(ctx, Run{StartedAt: start, FinishedAt: start.Add(3 * time.Second), OutputDir: "out"}, sampleTasks())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Completed)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 7, run.ConvertedChars)
	assert.Equal(t, 3, run.Total())

	got, tasks, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, start.Equal(got.StartedAt))
	assert.Equal(t, "out", got.OutputDir)
	assert.Equal(t, sampleTasks(), tasks)
}

func TestRunsNewestFirst(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * 150 * time.Millisecond)
		run, err := s.Record(ctx, Run{StartedAt: at, FinishedAt: at}, nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	limited, err := s.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetAndDelete_NotFound(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	_, _, err := s.Get(ctx, "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, "nope"), ErrRunNotFound))
}

func TestDeleteCascades(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	run, err := s.Record(ctx, Run{StartedAt: time.Now()}, sampleTasks())
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, run.ID))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM tasks`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestOpen_Locked(t *testing.T) {
	_, dir := testStore(t)

	_, err := Open(types.HistoryConfig{Dir: dir})
	assert.True(t, errors.Is(err, ErrLocked))
}

func TestOpen_ReopenAfterClose(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "h")
	s, err := Open(types.HistoryConfig{Dir: dir})
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Run{StartedAt: time.Now()}, sampleTasks())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(types.HistoryConfig{Dir: dir})
	require.NoError(t, err)
	defer s2.Close()
	runs, err := s2.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteReport(t *testing.T) {
	run := Run{ID: "r1", StartedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Completed: 2, Failed: 1, ConvertedChars: 7}

	for _, name := range []string{"report.yaml", "report.yml", "report.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reports", name)
			require.NoError(t, WriteReport(path, run, sampleTasks()))

			report, err := ReadReport(path)
			require.NoError(t, err)
			assert.Equal(t, "r1", report.Run.ID)
			assert.Equal(t, sampleTasks(), report.Tasks)
		})
	}
}

func TestWriteReport_YAMLFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.yaml")
	require.NoError(t, WriteReport(path, Run{ID: "x"}, sampleTasks()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "input_path: a.docx")
	assert.Contains(t, string(data), "status: failed")
	assert.Contains(t, string(data), "converted_chars: 5")
}

func TestWriteReport_UnsupportedExtension(t *testing.T) {
	err := WriteReport(filepath.Join(t.TempDir(), "r.txt"), Run{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}
