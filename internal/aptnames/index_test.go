package aptnames

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apt_list.json")
	return NewIndex(path, logrus.New()), path
}

func TestIndex_MonotonicSortedMerge(t *testing.T) {
	idx, _ := newTestIndex(t)

	idx.Merge("11680", []string{"은마"})
	idx.Merge("11680", []string{"래미안"})

	assert.Equal(t, []string{"래미안", "은마"}, idx.Get("11680"))

	// Reversed call order converges on the same result
	idx2, _ := newTestIndex(t)
	idx2.Merge("11680", []string{"래미안"})
	idx2.Merge("11680", []string{"은마"})
	assert.Equal(t, idx.Get("11680"), idx2.Get("11680"))
}

func TestIndex_MergeIsIdempotent(t *testing.T) {
	idx, _ := newTestIndex(t)

	first := idx.Merge("11680", []string{"은마", "래미안", "은마", ""})
	second := idx.Merge("11680", []string{"은마", "래미안"})

	assert.Equal(t, []string{"래미안", "은마"}, first)
	assert.Equal(t, first, second)
}

func TestIndex_RegionsAreIndependent(t *testing.T) {
	idx, _ := newTestIndex(t)

	idx.Merge("11680", []string{"은마"})
	idx.Merge("11650", []string{"래미안퍼스티지"})

	assert.Equal(t, []string{"은마"}, idx.Get("11680"))
	assert.Equal(t, []string{"래미안퍼스티지"}, idx.Get("11650"))
	assert.Empty(t, idx.Get("11710"))
}

func TestIndex_PersistsAcrossSessions(t *testing.T) {
	idx, path := newTestIndex(t)
	idx.Merge("11680", []string{"은마", "래미안"})

	reloaded := NewIndex(path, logrus.New())
	assert.Equal(t, []string{"래미안", "은마"}, reloaded.Get("11680"))
}

func TestIndex_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apt_list.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	idx := NewIndex(path, logrus.New())
	assert.Empty(t, idx.Get("11680"))

	// And recovers on the next merge
	idx.Merge("11680", []string{"은마"})
	assert.Equal(t, []string{"은마"}, NewIndex(path, logrus.New()).Get("11680"))
}
