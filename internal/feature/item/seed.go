package item

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"secondchance/internal/domain"
)

// Seed 商品表为空时从 JSON 数组文件导入初始数据
func (s *Service) Seed(ctx context.Context, file string) (int, error) {
	if file == "" {
		return 0, nil
	}
	n, err := s.items.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	if n > 0 {
		s.log.Info("items already present, skip seeding", zap.Int64("count", n))
		return 0, nil
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var items []domain.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	// 先把计数器抬到文件里最大的 id，缺 id 的条目再从计数器分配
	var maxID int64
	for _, it := range items {
		if v, err := strconv.ParseInt(it.ID, 10, 64); err == nil && v > maxID {
			maxID = v
		}
	}
	if err := s.seq.EnsureAtLeast(ctx, domain.ItemSequence, maxID); err != nil {
		return 0, fmt.Errorf("sync item sequence: %w", err)
	}

	now := s.now().Unix()
	for i := range items {
		it := &items[i]
		if it.ObjectID == "" {
			it.ObjectID = uuid.NewString()
		}
		if it.ID == "" {
			v, err := s.seq.Next(ctx, domain.ItemSequence)
			if err != nil {
				return 0, fmt.Errorf("allocate item id: %w", err)
			}
			it.ID = strconv.FormatInt(v, 10)
		}
		it.AgeYears = domain.AgeYears(it.AgeDays)
		if it.DateAdded == 0 {
			it.DateAdded = now
		}
	}
	if err := s.items.CreateBatch(ctx, items); err != nil {
		return 0, fmt.Errorf("insert seed items: %w", err)
	}
	s.log.Info("seeded items", zap.Int("count", len(items)), zap.String("file", file))
	return len(items), nil
}
