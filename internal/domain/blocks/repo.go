package blocks

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
)

const (
	pathBlocks      = "/api/bloques"
	pathBlock       = "/api/bloques/%d"
	pathGlue        = "/api/bloques/%d/encolado"
	pathLegacyList  = "/bloques"
	pathLegacyBlock = "/bloques/%d"
)

type Repo struct{ api *api.Client }

func NewRepo(client *api.Client) *Repo { return &Repo{api: client} }

func (r *Repo) Create(ctx context.Context, n NewBlock) (*Block, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	body := map[string]any{
		"ordenTaller":  map[string]int64{"idOrden": n.WorkOrderID},
		"cuerpo":       map[string]int64{"idCuerpo": n.GroupID},
		"bLargo":       n.Length.InexactFloat64(),
		"bAncho":       n.Width.InexactFloat64(),
		"bAlto":        n.Height.InexactFloat64(),
		"bPesoSinCola": n.WeightNoGlue.InexactFloat64(),
		"bBftFinal":    0,
		"estado":       string(StatePresented),
	}
	var out api.Fields
	if err := r.api.Post(ctx, pathBlocks, body, &out); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	b := FromFields(out)
	return &b, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Block, error) {
	var out api.Fields
	if err := r.api.Get(ctx, fmt.Sprintf(pathBlock, id), &out); err != nil {
		return nil, fmt.Errorf("get block %d: %w", id, err)
	}
	b := FromFields(out)
	if b.ID == 0 {
		b.ID = id
	}
	return &b, nil
}

// Glue читает блок заново, проверяет прибавку веса и только потом пишет.
func (r *Repo) Glue(ctx context.Context, id int64, with decimal.Decimal) (*Block, error) {
	b, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	glued, err := b.Glue(with)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"bPesoConCola": with.InexactFloat64()}
	if err := r.api.Put(ctx, fmt.Sprintf(pathGlue, id), body, nil); err != nil {
		return nil, fmt.Errorf("glue block %d: %w", id, err)
	}
	return &glued, nil
}

// ListDispatchable фильтрует локально: у /bloques нет фильтра по estado.
func (r *Repo) ListDispatchable(ctx context.Context) ([]Block, error) {
	var raw []api.Fields
	if err := r.api.Get(ctx, pathLegacyList, &raw); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	out := make([]Block, 0, len(raw))
	for _, f := range raw {
		b := FromFields(f)
		if b.ID == 0 || !b.Dispatchable() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// AssignToGroup переписывает блок целиком: старые поля + cuerpo + DESPACHO.
func (r *Repo) AssignToGroup(ctx context.Context, b Block, groupID int64) error {
	body := b.Raw().
		With("cuerpo", map[string]int64{"idCuerpo": groupID}).
		With("bEstado", string(StateDispatched))
	if err := r.api.Put(ctx, fmt.Sprintf(pathLegacyBlock, b.ID), body, nil); err != nil {
		return fmt.Errorf("assign block %d to group %d: %w", b.ID, groupID, err)
	}
	return nil
}
