package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/woodflow/woodflow-bot/internal/domain/blocks"
	"github.com/woodflow/woodflow-bot/internal/infra/metrics"
	"golang.org/x/sync/errgroup"
)

// maxParallel: сколько PUT /bloques/{id} держим одновременно.
const maxParallel = 4

type groupCreator interface {
	CreateGroup(ctx context.Context, width decimal.Decimal, note string) (*Group, error)
}

type blockAssigner interface {
	AssignToGroup(ctx context.Context, b blocks.Block, groupID int64) error
}

type Service struct {
	groups groupCreator
	blocks blockAssigner
	log    *slog.Logger
}

func NewService(groups groupCreator, assigner blockAssigner, log *slog.Logger) *Service {
	return &Service{groups: groups, blocks: assigner, log: log}
}

type Failure struct {
	BlockID int64
	Err     error
}

type BatchResult struct {
	Group    Group
	Assigned []int64
	Failed   []Failure
}

// PartialFailureError: cuerpo создан, но часть блоков не переведена.
// Откатов нет, cuerpo остаётся на бэкенде.
type PartialFailureError struct {
	GroupID int64
	Failed  []Failure
}

func (e *PartialFailureError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		ids = append(ids, fmt.Sprintf("%d", f.BlockID))
	}
	return fmt.Sprintf("group %d created, %d block(s) not assigned: %s", e.GroupID, len(e.Failed), strings.Join(ids, ", "))
}

func (e *PartialFailureError) Unwrap() []error {
	out := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		out = append(out, f.Err)
	}
	return out
}

func Note(n int) string { return fmt.Sprintf("Generado desde App con %d bloques", n) }

// CreateGroup проверяет ширину, создаёт cuerpo и переводит все блоки в
// DESPACHO параллельно. Ждёт все PUT и возвращает итог даже при частичной
// ошибке.
func (s *Service) CreateGroup(ctx context.Context, selected []blocks.Block) (*BatchResult, error) {
	if len(selected) == 0 {
		metrics.RejectValidation("dispatch_empty")
		return nil, errors.New("no blocks selected")
	}
	sum := decimal.Zero
	for _, b := range selected {
		sum = sum.Add(b.Width)
	}
	if err := CheckWidth(sum); err != nil {
		metrics.RejectValidation("dispatch_width")
		return nil, err
	}

	group, err := s.groups.CreateGroup(ctx, sum, Note(len(selected)))
	if err != nil {
		return nil, err
	}

	res := &BatchResult{Group: *group}
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallel)
	for _, b := range selected {
		eg.Go(func() error {
			// ошибку одного блока не отдаём в errgroup, иначе отменятся остальные
			err := s.blocks.AssignToGroup(egCtx, b, group.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed = append(res.Failed, Failure{BlockID: b.ID, Err: err})
				return nil
			}
			res.Assigned = append(res.Assigned, b.ID)
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(res.Assigned, func(i, j int) bool { return res.Assigned[i] < res.Assigned[j] })
	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].BlockID < res.Failed[j].BlockID })
	res.Group.BlockIDs = append([]int64(nil), res.Assigned...)

	s.log.Info("dispatch group created",
		"group_id", group.ID, "width", sum.String(), "assigned", len(res.Assigned), "failed", len(res.Failed))

	if len(res.Failed) > 0 {
		return res, &PartialFailureError{GroupID: group.ID, Failed: res.Failed}
	}
	return res, nil
}
