package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/commitlens/pkg/models"
)

type countingAnalyzer struct {
	calls atomic.Int32
	err   error
}

func (c *countingAnalyzer) AnalyzeChanges(_ context.Context, files []models.ChangedFile) (*models.ExternalAnalysis, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &models.ExternalAnalysis{
		QualityScore:    float64(len(files)),
		Recommendations: []string{"split the function"},
	}, nil
}

var files = []models.ChangedFile{
	{Path: "a.py", Patch: "+x = 1", Additions: 1, Status: models.StatusModified},
}

func TestAnalyzer_CachesSuccess(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour, true)
	require.NoError(t, err)
	inner := &countingAnalyzer{}
	a := NewAnalyzer(inner, c, WithNamespace("gemini-2.0-flash"))

	first, err := a.AnalyzeChanges(context.Background(), files)
	require.NoError(t, err)
	second, err := a.AnalyzeChanges(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, second.QualityScore)
}

func TestAnalyzer_DistinctChanges(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour, true)
	require.NoError(t, err)
	inner := &countingAnalyzer{}
	a := NewAnalyzer(inner, c)

	other := []models.ChangedFile{{Path: "a.py", Patch: "+x = 2", Additions: 1}}
	_, err = a.AnalyzeChanges(context.Background(), files)
	require.NoError(t, err)
	_, err = a.AnalyzeChanges(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestAnalyzer_NamespaceSeparatesEntries(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour, true)
	require.NoError(t, err)

	k1, err := NewAnalyzer(&countingAnalyzer{}, c, WithNamespace("m1")).Key(files)
	require.NoError(t, err)
	k2, err := NewAnalyzer(&countingAnalyzer{}, c, WithNamespace("m2")).Key(files)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestAnalyzer_ErrorsNotCached(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour, true)
	require.NoError(t, err)
	inner := &countingAnalyzer{err: errors.New("unavailable")}
	a := NewAnalyzer(inner, c)

	_, err = a.AnalyzeChanges(context.Background(), files)
	require.Error(t, err)

	inner.err = nil
	got, err := a.AnalyzeChanges(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.QualityScore)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestAnalyzer_DisabledCache(t *testing.T) {
	c, err := New("", 0, false)
	require.NoError(t, err)
	inner := &countingAnalyzer{}
	a := NewAnalyzer(inner, c)

	for range 3 {
		_, err := a.AnalyzeChanges(context.Background(), files)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), inner.calls.Load())
}
