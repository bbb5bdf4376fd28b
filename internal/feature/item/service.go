package item

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"secondchance/internal/domain"
	"secondchance/internal/storage"
)

type Service struct {
	items  domain.ItemRepository
	seq    domain.Sequence
	images storage.ImageStore
	log    *zap.Logger
	now    func() time.Time
}

func NewService(items domain.ItemRepository, seq domain.Sequence, images storage.ImageStore, log *zap.Logger) *Service {
	return &Service{items: items, seq: seq, images: images, log: log, now: time.Now}
}

// CreateInput 同时支持 multipart 表单与 JSON
type CreateInput struct {
	Name        string `form:"name" json:"name"`
	Category    string `form:"category" json:"category"`
	Condition   string `form:"condition" json:"condition"`
	Description string `form:"description" json:"description"`
	AgeDays     *int   `form:"age_days" json:"age_days"`
}

// Image 随商品一起上传的图片
type Image struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

func (s *Service) List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	items, err := s.items.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	s.log.Debug("fetched items", zap.Int("count", len(items)))
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Item, error) {
	it, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	if it == nil {
		s.log.Warn("item not found", zap.String("id", id))
		return nil, domain.ErrItemNotFound
	}
	return it, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, img *Image) (*domain.Item, error) {
	var ve domain.ValidationError
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "is required")
	}
	days := 0
	if in.AgeDays != nil {
		days = *in.AgeDays
		if days < 0 {
			ve.Add("age_days", "must be a non-negative integer")
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	n, err := s.seq.Next(ctx, domain.ItemSequence)
	if err != nil {
		return nil, fmt.Errorf("allocate item id: %w", err)
	}
	it := &domain.Item{
		ObjectID:    uuid.NewString(),
		ID:          strconv.FormatInt(n, 10),
		Name:        in.Name,
		Category:    in.Category,
		Condition:   in.Condition,
		Description: in.Description,
		AgeDays:     days,
		AgeYears:    domain.AgeYears(days),
		DateAdded:   s.now().Unix(),
	}

	if img != nil {
		path, err := s.images.Save(ctx, img.Filename, img.Body, img.Size, img.ContentType)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		it.Image = &path
		s.log.Info("uploaded image", zap.String("image", path))
	}

	if err := s.items.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.log.Info("item created", zap.String("id", it.ID))
	return it, nil
}

// Update 值没有任何变化时返回 false（不是错误）
func (s *Service) Update(ctx context.Context, id string, p ItemPatch) (bool, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	var ch domain.ItemChanges
	changed := false
	setString := func(f fieldString, old string, dst **string) {
		if !f.Set || f.Value == old {
			return
		}
		v := f.Value
		*dst = &v
		changed = true
	}
	setString(p.Category, cur.Category, &ch.Category)
	setString(p.Condition, cur.Condition, &ch.Condition)
	setString(p.Description, cur.Description, &ch.Description)
	if p.AgeDays.Set {
		days := p.AgeDays.Value
		years := domain.AgeYears(days)
		if days != cur.AgeDays || years != cur.AgeYears {
			ch.AgeDays, ch.AgeYears = &days, &years
			changed = true
		}
	}
	if !changed {
		s.log.Warn("item update failed: nothing to change", zap.String("id", id))
		return false, nil
	}

	ch.UpdatedAt = s.now()
	n, err := s.items.Update(ctx, id, ch)
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	if n == 0 {
		s.log.Warn("item update failed", zap.String("id", id))
		return false, nil
	}
	s.log.Info("item updated successfully", zap.String("id", id))
	return true, nil
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	n, err := s.items.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		s.log.Warn("item deletion failed", zap.String("id", id))
		return false, nil
	}
	s.log.Info("item deleted successfully", zap.String("id", id))
	return true, nil
}

// SyncSequence 把 id 计数器抬到现有数据的最大数值 id
func (s *Service) SyncSequence(ctx context.Context) error {
	maxID, err := s.items.MaxNumericID(ctx)
	if err != nil {
		return fmt.Errorf("max item id: %w", err)
	}
	if err := s.seq.EnsureAtLeast(ctx, domain.ItemSequence, maxID); err != nil {
		return fmt.Errorf("sync item sequence: %w", err)
	}
	return nil
}
