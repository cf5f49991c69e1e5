package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsageStore struct {
	recent    map[string]bool
	recorded  []string
	recordErr error
	lookupErr error
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{recent: map[string]bool{}}
}

func (f *fakeUsageStore) RecordUsage(userID, templateText, templateHash string, isManual bool, buildingSerial string, usedAt time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, templateText)
	return nil
}

func (f *fakeUsageStore) HasRecentUsage(userID, templateHash string, since time.Time) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	return f.recent[templateHash], nil
}

var (
	tuesday  = time.Date(2024, 9, 3, 12, 0, 0, 0, time.UTC)
	saturday = time.Date(2024, 9, 7, 12, 0, 0, 0, time.UTC)
)

func TestTemplateHash(t *testing.T) {
	// Hash identity ignores case and surrounding whitespace.
	assert.Equal(t, TemplateHash("New shed in stock!"), TemplateHash("  NEW SHED IN STOCK!  "))
	assert.NotEqual(t, TemplateHash("a"), TemplateHash("b"))
	assert.Len(t, TemplateHash("anything"), 64)
}

func TestSelectFirstPassingTemplate(t *testing.T) {
	store := newFakeUsageStore()
	selector := NewSelector(store)
	selection := selector.Select("u1", []string{"Fresh inventory just arrived"}, tuesday, false, "S1")
	require.NotNil(t, selection.Template)
	assert.Equal(t, "Fresh inventory just arrived", *selection.Template)
	assert.Contains(t, selection.Reason, "day ok")
	assert.Contains(t, selection.Reason, "not used in the last 10 days")
	assert.Equal(t, []string{"Fresh inventory just arrived"}, store.recorded)
}

func TestSelectRejectsRecentlyUsed(t *testing.T) {
	template := "Come see our lofted barns"
	store := newFakeUsageStore()
	store.recent[TemplateHash(template)] = true

	selector := NewSelector(store)
	selection := selector.Select("u1", []string{template}, tuesday, false, "S1")
	assert.Nil(t, selection.Template)
	assert.Contains(t, selection.Reason, "used within the last 10 days")
	assert.Empty(t, store.recorded)
}

func TestManualBypassesRecency(t *testing.T) {
	template := "Come see our lofted barns"
	store := newFakeUsageStore()
	store.recent[TemplateHash(template)] = true

	selector := NewSelector(store)
	selection := selector.Select("u1", []string{template}, tuesday, true, "S1")
	require.NotNil(t, selection.Template)
	assert.Equal(t, template, *selection.Template)
	assert.Contains(t, selection.Reason, "manual")
}

func TestWeekendTemplateGating(t *testing.T) {
	weekend := "Huge WEEKEND SALE on all cabins"
	store := newFakeUsageStore()
	selector := NewSelector(store)

	t.Run("rejected on a tuesday", func(t *testing.T) {
		selection := selector.Select("u1", []string{weekend}, tuesday, false, "S1")
		assert.Nil(t, selection.Template)
		assert.Contains(t, selection.Reason, "weekend copy blocked")
	})

	t.Run("accepted on a saturday", func(t *testing.T) {
		selection := selector.Select("u1", []string{weekend}, saturday, false, "S1")
		require.NotNil(t, selection.Template)
		assert.Equal(t, weekend, *selection.Template)
	})

	t.Run("manual bypasses the day check", func(t *testing.T) {
		selection := selector.Select("u1", []string{weekend}, tuesday, true, "S1")
		require.NotNil(t, selection.Template)
	})
}

func TestWeekendGateFallsThroughToNextCandidate(t *testing.T) {
	store := newFakeUsageStore()
	selector := NewSelector(store)
	templates := []string{"Saturday special on sheds", "Everyday low prices"}
	selection := selector.Select("u1", templates, tuesday, false, "S1")
	require.NotNil(t, selection.Template)
	assert.Equal(t, "Everyday low prices", *selection.Template)
}

func TestNoTemplatesIsNormalOutcome(t *testing.T) {
	selector := NewSelector(newFakeUsageStore())
	selection := selector.Select("u1", nil, tuesday, false, "S1")
	assert.Nil(t, selection.Template)
	assert.Equal(t, "no templates available", selection.Reason)
}

func TestRecordFailureIsSwallowed(t *testing.T) {
	store := newFakeUsageStore()
	store.recordErr = errors.New("disk full")
	selector := NewSelector(store)
	selection := selector.Select("u1", []string{"Fresh inventory"}, tuesday, false, "S1")
	require.NotNil(t, selection.Template)
}

func TestRecencyLookupErrorDoesNotBlock(t *testing.T) {
	store := newFakeUsageStore()
	store.lookupErr = errors.New("connection reset")
	selector := NewSelector(store)
	selection := selector.Select("u1", []string{"Fresh inventory"}, tuesday, false, "S1")
	require.NotNil(t, selection.Template)
}

func TestUsageStoreRoundTrip(t *testing.T) {
	database := openTestDB(t)
	store := &Store{DB: database}
	now := time.Date(2024, 9, 5, 12, 0, 0, 0, time.UTC)
	hash := TemplateHash("New cabins in stock")

	used, err := store.HasRecentUsage("u1", hash, now.AddDate(0, 0, -10))
	require.NoError(t, err)
	assert.False(t, used)

	// Used 3 days ago, non-manual: inside the window.
	require.NoError(t, store.RecordUsage("u1", "New cabins in stock", hash, false, "S1", now.AddDate(0, 0, -3)))
	used, err = store.HasRecentUsage("u1", hash, now.AddDate(0, 0, -10))
	require.NoError(t, err)
	assert.True(t, used)

	// Manual usage records never block.
	manualHash := TemplateHash("Manual only template")
	require.NoError(t, store.RecordUsage("u1", "Manual only template", manualHash, true, "S1", now.AddDate(0, 0, -1)))
	used, err = store.HasRecentUsage("u1", manualHash, now.AddDate(0, 0, -10))
	require.NoError(t, err)
	assert.False(t, used)

	// Other users don't interfere.
	used, err = store.HasRecentUsage("u2", hash, now.AddDate(0, 0, -10))
	require.NoError(t, err)
	assert.False(t, used)
}

func TestSelectorAgainstSQLStore(t *testing.T) {
	database := openTestDB(t)
	store := &Store{DB: database}
	now := time.Date(2024, 9, 3, 12, 0, 0, 0, time.UTC)
	selector := &Selector{Store: store, RecencyWindow: DefaultRecencyWindow, Now: func() time.Time { return now }}

	template := "Check out this lofted barn"
	first := selector.Select("u1", []string{template}, tuesday, false, "S1")
	require.NotNil(t, first.Template)

	// The recorded use now blocks the same template.
	second := selector.Select("u1", []string{template}, tuesday, false, "S2")
	assert.Nil(t, second.Template)

	// Manual still goes through and its record keeps not blocking.
	third := selector.Select("u1", []string{template}, tuesday, true, "S3")
	require.NotNil(t, third.Template)
}
