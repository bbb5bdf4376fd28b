package item

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"secondchance/internal/core/database/dbtest"
	"secondchance/internal/domain"
	"secondchance/internal/repo"
	"secondchance/internal/storage"
)

type fixture struct {
	svc    *Service
	items  *repo.ItemRepo
	imgDir string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t, repo.Models()...)
	dir := filepath.Join(t.TempDir(), "images")
	images, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	items := repo.NewItemRepo(db)
	svc := NewService(items, repo.NewSequenceRepo(db), images, zap.NewNop())
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return fixture{svc: svc, items: items, imgDir: dir}
}

func days(n int) *int { return &n }

func TestCreate_AllocatesSequentialIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, want := range []string{"1", "2", "3"} {
		it, err := f.svc.Create(ctx, CreateInput{Name: "Item " + want}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, it.ID)
		assert.NotEmpty(t, it.ObjectID)
		assert.Nil(t, it.Image)
		assert.EqualValues(t, 1700000000, it.DateAdded)
	}
}

func TestCreate_PastNineIsNumeric(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var last string
	for i := 0; i < 11; i++ {
		it, err := f.svc.Create(ctx, CreateInput{Name: "n"}, nil)
		require.NoError(t, err)
		last = it.ID
	}
	assert.Equal(t, "11", last)
}

func TestCreate_WithImageAndAge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	it, err := f.svc.Create(ctx, CreateInput{
		Name: "Sofa", Category: "Living", Condition: "Good", Description: "comfy", AgeDays: days(500),
	}, &Image{Filename: "sofa.jpg", Size: 4, ContentType: "image/jpeg", Body: strings.NewReader("jpeg")})
	require.NoError(t, err)

	require.NotNil(t, it.Image)
	assert.Equal(t, "/images/sofa.jpg", *it.Image)
	assert.Equal(t, 500, it.AgeDays)
	assert.Equal(t, 1.4, it.AgeYears)

	b, err := os.ReadFile(filepath.Join(f.imgDir, "sofa.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(b))

	got, err := f.svc.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, it.ObjectID, got.ObjectID)
	assert.Equal(t, "/images/sofa.jpg", *got.Image)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{Name: " ", AgeDays: days(-1)}, nil)
	ve, ok := domain.IsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 2)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), "99")
	assert.True(t, errors.Is(err, domain.ErrItemNotFound))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	it, err := f.svc.Create(ctx, CreateInput{Name: "Desk", Category: "Office", Condition: "Good", AgeDays: days(100)}, nil)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "404", ItemPatch{})
	assert.True(t, errors.Is(err, domain.ErrItemNotFound))

	p, err := ParseItemPatch([]byte(`{"category":"Office","condition":"Good","age_days":100}`))
	require.NoError(t, err)
	ok, err := f.svc.Update(ctx, it.ID, p)
	require.NoError(t, err)
	assert.False(t, ok, "identical values report failed")

	p, err = ParseItemPatch([]byte(`{"condition":"Fair","age_days":"730","description":"scratched"}`))
	require.NoError(t, err)
	ok, err = f.svc.Update(ctx, it.ID, p)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := f.svc.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Category)
	assert.Equal(t, "Fair", got.Condition)
	assert.Equal(t, "scratched", got.Description)
	assert.Equal(t, 730, got.AgeDays)
	assert.Equal(t, 2.0, got.AgeYears)
	require.NotNil(t, got.UpdatedAt)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	it, err := f.svc.Create(ctx, CreateInput{Name: "Lamp"}, nil)
	require.NoError(t, err)

	ok, err := f.svc.Delete(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.Delete(ctx, it.ID)
	assert.True(t, errors.Is(err, domain.ErrItemNotFound))
}

// vanishingRepo 查询能查到，但写入时记录已被并发删除，影响行数为 0
type vanishingRepo struct {
	domain.ItemRepository
	item    domain.Item
	updates int
	deletes int
}

func (r *vanishingRepo) FindByID(_ context.Context, id string) (*domain.Item, error) {
	if id != r.item.ID {
		return nil, nil
	}
	it := r.item
	return &it, nil
}

func (r *vanishingRepo) Update(context.Context, string, domain.ItemChanges) (int64, error) {
	r.updates++
	return 0, nil
}

func (r *vanishingRepo) Delete(context.Context, string) (int64, error) {
	r.deletes++
	return 0, nil
}

func TestUpdateDelete_NoRowsAffected(t *testing.T) {
	ctx := context.Background()
	items := &vanishingRepo{item: domain.Item{ID: "7", Name: "Lamp", Condition: "Good"}}
	svc := NewService(items, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	p, err := ParseItemPatch([]byte(`{"condition":"Fair"}`))
	require.NoError(t, err)
	ok, err := svc.Update(ctx, "7", p)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, items.updates)

	ok, err = svc.Delete(ctx, "7")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, items.deletes)

	_, err = svc.Delete(ctx, "8")
	assert.True(t, errors.Is(err, domain.ErrItemNotFound))
	assert.Equal(t, 1, items.deletes)
}

func TestSyncSequence_ContinuesAfterExistingIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, id := range []string{"9", "10"} {
		require.NoError(t, f.items.Create(ctx, &domain.Item{ObjectID: "obj-" + id, ID: id, Name: "old"}))
	}
	require.NoError(t, f.svc.SyncSequence(ctx))

	it, err := f.svc.Create(ctx, CreateInput{Name: "new"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "11", it.ID)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"id":"1","name":"Chair","category":"Office","condition":"Good","age_days":365,"age_years":9,"image":"/images/chair.jpg","date_added":1690000000},
		{"id":"5","name":"Table","category":"Kitchen","condition":"Fair","age_days":730},
		{"name":"Rug","category":"Living","condition":"New","age_days":0}
	]`), 0o600))

	n, err := f.svc.Seed(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rug, err := f.svc.List(ctx, domain.ItemFilter{Name: "rug"})
	require.NoError(t, err)
	require.Len(t, rug, 1)
	assert.Equal(t, "6", rug[0].ID)
	assert.EqualValues(t, 1700000000, rug[0].DateAdded)

	chair, err := f.svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, chair.AgeYears, "age_years recomputed")

	n, err = f.svc.Seed(ctx, file)
	require.NoError(t, err)
	assert.Zero(t, n, "non-empty table is not reseeded")

	it, err := f.svc.Create(ctx, CreateInput{Name: "next"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "7", it.ID)

	n, err = f.svc.Seed(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseItemPatch(t *testing.T) {
	p, err := ParseItemPatch([]byte(`{"category":null,"age_days":"12"}`))
	require.NoError(t, err)
	assert.True(t, p.Category.Set)
	assert.True(t, p.Category.Null)
	assert.False(t, p.Condition.Set)
	assert.Equal(t, 12, p.AgeDays.Value)

	_, err = ParseItemPatch([]byte(`{"category":3,"condition":true,"age_days":-4}`))
	ve, ok := domain.IsValidation(err)
	require.True(t, ok)
	fields := []string{}
	for _, fe := range ve.Fields {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"category", "condition", "age_days"}, fields)

	_, err = ParseItemPatch([]byte(`{"age_days":null}`))
	_, ok = domain.IsValidation(err)
	assert.True(t, ok)

	_, err = ParseItemPatch([]byte(`{"age_days":"ten"}`))
	_, ok = domain.IsValidation(err)
	assert.True(t, ok)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("  chair ", "Office", "", "2")
	require.NoError(t, err)
	assert.Equal(t, "chair", f.Name)
	assert.Equal(t, "Office", f.Category)
	require.NotNil(t, f.MaxAgeYears)
	assert.Equal(t, 2.0, *f.MaxAgeYears)

	f, err = ParseFilter("", "", "", "0.5")
	require.NoError(t, err)
	require.NotNil(t, f.MaxAgeYears)
	assert.Equal(t, 0.5, *f.MaxAgeYears, "fractional years are kept, not truncated")

	f, err = ParseFilter("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemFilter{}, f)

	_, err = ParseFilter("", "", "", "old")
	_, ok := domain.IsValidation(err)
	assert.True(t, ok)
}
