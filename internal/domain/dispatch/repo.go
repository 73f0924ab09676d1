package dispatch

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
)

const pathGroups = "/cuerpos"

type Group struct {
	ID       int64
	Width    decimal.Decimal
	Note     string
	BlockIDs []int64
}

type Repo struct{ api *api.Client }

func NewRepo(client *api.Client) *Repo { return &Repo{api: client} }

func (r *Repo) CreateGroup(ctx context.Context, width decimal.Decimal, note string) (*Group, error) {
	body := map[string]any{
		"cuerpoAnchoFinal":  width.InexactFloat64(),
		"cuerpoObservacion": note,
	}
	var out api.Fields
	if err := r.api.Post(ctx, pathGroups, body, &out); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	id := out.Int64("idCuerpo", "id_cuerpo", "id")
	if id == 0 {
		return nil, fmt.Errorf("create group: backend returned no idCuerpo")
	}
	return &Group{ID: id, Width: width, Note: note}, nil
}
