package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/internal/adapter"
	"github.com/loomworks/loom/internal/pipeline"
	"github.com/loomworks/loom/internal/testutil"
	"github.com/loomworks/loom/pkg/model"
)

// testPipeline builds raw_trips -> stage_trips with a groupby-free stage.
func testPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	raw := model.NewSourceTable("main", "raw_trips", "Raw trips", "a")
	require.NoError(t, raw.Build(func(b *model.Builder) error {
		for _, f := range []string{"id", "vendor_id", "trip_duration"} {
			if _, err := b.Source(f, ""); err != nil {
				return err
			}
		}
		return nil
	}))

	stage, err := model.NewDerivedTable("main", "stage_trips", "Staged trips", "b",
		[]model.Table{raw}, "{a}")
	require.NoError(t, err)
	require.NoError(t, stage.Build(func(b *model.Builder) error {
		if _, err := b.Passthrough("{a.id}"); err != nil {
			return err
		}
		if _, err := b.Passthrough("cast({a.vendor_id} as int)"); err != nil {
			return err
		}
		_, err := b.Derived("duration_min", "cast({a.trip_duration} as real)/60", "")
		return err
	}))

	p := pipeline.New("test")
	require.NoError(t, p.Add(raw, stage))
	return p
}

func writeSeeds(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csvData := "id,vendor_id,trip_duration\nt1,1,455\nt2,2,663\nt3,1,120\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_trips.csv"), []byte(csvData), 0o644))
	return dir
}

func TestEngine_SeedAndRun(t *testing.T) {
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.db")

	eng, err := New(Config{
		Adapter:   adapter.Config{Type: "sqlite", Path: ":memory:"},
		SeedsDir:  writeSeeds(t),
		StatePath: statePath,
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	p := testPipeline(t)
	require.NoError(t, eng.LoadSeeds(ctx, p))

	result, err := eng.Run(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "stage_trips", result.Tables[0].Table)
	assert.Equal(t, int64(3), result.Tables[0].Rows)

	runs, err := eng.Store().ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, "success", runs[0].Status)
	assert.Equal(t, int64(3), runs[0].Rows)
}

func TestEngine_RunIsRepeatable(t *testing.T) {
	ctx := context.Background()

	eng, err := New(Config{
		Adapter:  adapter.Config{Type: "sqlite", Path: ":memory:"},
		SeedsDir: writeSeeds(t),
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	p := testPipeline(t)
	require.NoError(t, eng.LoadSeeds(ctx, p))

	// Derived tables are dropped and rebuilt, so a second run must not fail
	// or double the rows.
	_, err = eng.Run(ctx, p)
	require.NoError(t, err)
	result, err := eng.Run(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Tables[0].Rows)
}

func TestEngine_RunFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.db")

	eng, err := New(Config{
		Adapter:   adapter.Config{Type: "sqlite", Path: ":memory:"},
		StatePath: statePath,
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	// No seeds loaded: the CTAS reads a table that does not exist.
	p := testPipeline(t)
	_, err = eng.Run(ctx, p)
	require.Error(t, err)

	runs, err := eng.Store().ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "error", runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
}

func TestEngine_UnknownAdapter(t *testing.T) {
	_, err := New(Config{Adapter: adapter.Config{Type: "oracle"}})
	assert.Error(t, err)
}

func TestEngine_MissingSeedFileIsSkipped(t *testing.T) {
	ctx := context.Background()

	eng, err := New(Config{
		Adapter:  adapter.Config{Type: "sqlite", Path: ":memory:"},
		SeedsDir: t.TempDir(),
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	assert.NoError(t, eng.LoadSeeds(ctx, testPipeline(t)))
}
