package drying

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/woodflow/woodflow-bot/internal/infra/api"
)

const (
	pathChambers = "/api/camaras/estado/disponibles"
	pathLots     = "/api/lotes-secado"
	pathCreate   = "/api/secado/crear"
	pathFinalize = "/api/secado/finalizar/%d"
)

type Repo struct {
	api *api.Client
	loc *time.Location
}

func NewRepo(client *api.Client, loc *time.Location) *Repo {
	if loc == nil {
		loc = time.UTC
	}
	return &Repo{api: client, loc: loc}
}

func (r *Repo) ListChambers(ctx context.Context) ([]Chamber, error) {
	var raw []api.Fields
	if err := r.api.Get(ctx, pathChambers, &raw); err != nil {
		return nil, fmt.Errorf("list chambers: %w", err)
	}
	out := make([]Chamber, 0, len(raw))
	for _, f := range raw {
		c := ChamberFromFields(f)
		if c.ID == 0 {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Repo) ListLots(ctx context.Context) ([]Lot, error) {
	var raw []api.Fields
	if err := r.api.Get(ctx, pathLots, &raw); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	out := make([]Lot, 0, len(raw))
	for _, f := range raw {
		out = append(out, r.LotFromFields(f))
	}
	return out, nil
}

// FindLot ищет лот в общем списке: отдельного GET по id у бэкенда нет.
func (r *Repo) FindLot(ctx context.Context, id int64) (*Lot, error) {
	lots, err := r.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range lots {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("lot %d not found", id)
}

// Create валидирует форму и создаёт лот. Возвращает состояние из ответа.
func (r *Repo) Create(ctx context.Context, n NewLot) (State, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	body := map[string]any{
		"idCamara":          n.ChamberID,
		"loteFechaInicio":   WireDate(AtShiftStart(n.Start, r.loc)),
		"loteFechaFin":      WireDate(AtShiftStart(n.End, r.loc)),
		"idPallets":         append([]int64(nil), n.PalletIDs...),
		"loteObservaciones": n.Notes,
	}
	var out api.Fields
	if err := r.api.Post(ctx, pathCreate, body, &out); err != nil {
		return "", fmt.Errorf("create lot: %w", err)
	}
	return ParseState(out.String("estado", "loteEstado")), nil
}

// Finalize отправляет лот в сухой склад. total: замер сухого BFT, может
// быть нулём, тогда тело запроса пустое.
func (r *Repo) Finalize(ctx context.Context, lot Lot, total decimal.Decimal) error {
	if lot.State != StateReadyForBFT {
		return fmt.Errorf("%w: lot %d is %s", ErrNotReady, lot.ID, lot.State)
	}
	var body any
	if total.IsPositive() {
		body = map[string]any{"bftTotalLote": total.Round(2).InexactFloat64()}
	}
	if err := r.api.Patch(ctx, fmt.Sprintf(pathFinalize, lot.ID), body, nil); err != nil {
		return fmt.Errorf("finalize lot %d: %w", lot.ID, err)
	}
	return nil
}

func ChamberFromFields(f api.Fields) Chamber {
	return Chamber{
		ID:          f.Int64("id_camara", "idCamara", "id"),
		Description: f.String("camaraDescripcion", "camara_descripcion", "descripcion"),
		Capacity:    f.String("camaraCapacidad", "camara_capacidad", "capacidad"),
	}
}

func (r *Repo) LotFromFields(f api.Fields) Lot {
	chamber := f.Object("camara")
	chamberID := chamber.Int64("idCamara", "id_camara", "id")
	if chamberID == 0 {
		chamberID = f.Int64("idCamara", "id_camara")
	}
	species := f.String("especie", "loteEspecie")
	if species == "" {
		species = "Balsa"
	}
	return Lot{
		ID:        f.Int64("idLote", "id_lote", "id"),
		ChamberID: chamberID,
		Species:   species,
		Start:     f.Time(r.loc, "loteFechaInicio", "lote_fecha_inicio"),
		End:       f.Time(r.loc, "loteFechaFin", "lote_fecha_fin"),
		PalletIDs: f.Int64s([]string{"idPallet", "id_pallet", "id"}, "idPallets", "pallets"),
		TotalBFT:  f.Decimal("bftTotalLote", "bft_total_lote"),
		Notes:     f.String("loteObservaciones", "lote_observaciones"),
		State:     ParseState(f.String("estado", "loteEstado")),
	}
}
