package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"secondchance/internal/core/database/dbtest"
	"secondchance/internal/domain"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, Models()...)
}

func newItem(id, name, category, condition string, ageDays int) domain.Item {
	return domain.Item{
		ObjectID:  uuid.NewString(),
		ID:        id,
		Name:      name,
		Category:  category,
		Condition: condition,
		AgeDays:   ageDays,
		AgeYears:  domain.AgeYears(ageDays),
		DateAdded: time.Now().Unix(),
	}
}

func TestUserRepo_CreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(openDB(t))

	u := &domain.User{ID: uuid.NewString(), Email: "a@example.com", FirstName: "Ada", LastName: "L", PasswordHash: "h"}
	require.NoError(t, r.Create(ctx, u))

	got, err := r.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.UpdatedAt)

	missing, err := r.FindByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing, "email lookup is case-sensitive")

	now := time.Now().UTC().Truncate(time.Second)
	got.FirstName = "Grace"
	got.UpdatedAt = &now
	require.NoError(t, r.UpdateProfile(ctx, got))

	again, err := r.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Grace", again.FirstName)
	assert.Equal(t, "L", again.LastName)
	require.NotNil(t, again.UpdatedAt)
}

func TestUserRepo_DuplicateEmailIsTranslated(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(openDB(t))

	require.NoError(t, r.Create(ctx, &domain.User{ID: uuid.NewString(), Email: "dup@example.com", PasswordHash: "h"}))
	err := r.Create(ctx, &domain.User{ID: uuid.NewString(), Email: "dup@example.com", PasswordHash: "h"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateEmail), "got %v", err)
}

func TestItemRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	r := NewItemRepo(openDB(t))

	require.NoError(t, r.CreateBatch(ctx, []domain.Item{
		newItem("1", "Office Chair", "Office", "Good", 730),
		newItem("2", "Kitchen chair", "Kitchen", "Like New", 200),
		newItem("3", "Desk 100%", "Office", "Fair", 1500),
		newItem("4", "Desk lamp", "Office", "Good", 365),
	}))

	ids := func(items []domain.Item) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		sort.Strings(out)
		return out
	}
	two := 2.0

	all, err := r.List(ctx, domain.ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(all))

	got, err := r.List(ctx, domain.ItemFilter{Name: "  CHAIR "})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(got))

	got, err = r.List(ctx, domain.ItemFilter{Category: "Office", Condition: "Good"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(got))

	got, err = r.List(ctx, domain.ItemFilter{MaxAgeYears: &two})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4"}, ids(got))

	got, err = r.List(ctx, domain.ItemFilter{Name: "%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(got), "wildcards are matched literally")

	got, err = r.List(ctx, domain.ItemFilter{Category: "office"})
	require.NoError(t, err)
	assert.Empty(t, got, "category is an exact match")
	assert.NotNil(t, got)
}

func TestItemRepo_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	r := NewItemRepo(openDB(t))

	it := newItem("7", "Lamp", "Home", "Good", 10)
	require.NoError(t, r.Create(ctx, &it))

	n, err := r.Update(ctx, "7", domain.ItemChanges{})
	require.NoError(t, err)
	assert.Zero(t, n)

	cond := "Fair"
	days := 730
	years := domain.AgeYears(days)
	n, err = r.Update(ctx, "7", domain.ItemChanges{Condition: &cond, AgeDays: &days, AgeYears: &years, UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := r.FindByID(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Fair", got.Condition)
	assert.Equal(t, 730, got.AgeDays)
	assert.Equal(t, 2.0, got.AgeYears)
	assert.NotNil(t, got.UpdatedAt)

	n, err = r.Update(ctx, "404", domain.ItemChanges{Condition: &cond, UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.Delete(ctx, "7")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = r.FindByID(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err = r.Delete(ctx, "7")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestItemRepo_MaxNumericID(t *testing.T) {
	ctx := context.Background()
	r := NewItemRepo(openDB(t))

	max, err := r.MaxNumericID(ctx)
	require.NoError(t, err)
	assert.Zero(t, max)

	for _, id := range []string{"9", "10", "2", "legacy-x"} {
		it := newItem(id, "n"+id, "c", "Good", 1)
		require.NoError(t, r.Create(ctx, &it))
	}
	max, err = r.MaxNumericID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, max, "numeric, not lexicographic")

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestSequenceRepo_NextStartsAtOne(t *testing.T) {
	ctx := context.Background()
	s := NewSequenceRepo(openDB(t))

	for want := int64(1); want <= 3; want++ {
		got, err := s.Next(ctx, domain.ItemSequence)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := s.Next(ctx, "other")
	require.NoError(t, err)
	assert.EqualValues(t, 1, other)
}

func TestSequenceRepo_EnsureAtLeast(t *testing.T) {
	ctx := context.Background()
	s := NewSequenceRepo(openDB(t))

	require.NoError(t, s.EnsureAtLeast(ctx, "items", 9))
	got, err := s.Next(ctx, "items")
	require.NoError(t, err)
	assert.EqualValues(t, 10, got)

	// 已经更大时不会回退
	require.NoError(t, s.EnsureAtLeast(ctx, "items", 3))
	got, err = s.Next(ctx, "items")
	require.NoError(t, err)
	assert.EqualValues(t, 11, got)
}

func TestSequenceRepo_ConcurrentNextIsUnique(t *testing.T) {
	ctx := context.Background()
	s := NewSequenceRepo(openDB(t))

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan int64, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Next(ctx, "items")
			if err != nil {
				errs <- err
				return
			}
			results <- v
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[int64]bool{}
	for v := range results {
		assert.False(t, seen[v], fmt.Sprintf("duplicate id %d", v))
		seen[v] = true
	}
	assert.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i])
	}
}
