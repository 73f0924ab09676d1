package pallets

import (
	"context"
	"fmt"
	"time"

	"github.com/woodflow/woodflow-bot/internal/infra/api"
)

const (
	pathGreenPallets  = "/pallets-verdes"
	pathRatings       = "/calificaciones-pallets"
	pathDryingPallets = "/api/secado/disponibles"
)

type Repo struct{ api *api.Client }

func NewRepo(client *api.Client) *Repo { return &Repo{api: client} }

// Create регистрирует паллету. Ответ бэкенда уже содержит номер и BFT.
func (r *Repo) Create(ctx context.Context, n NewPallet) (*Pallet, error) {
	body := map[string]any{
		"recepcion":            map[string]int64{"idRecepcion": n.ReceptionID},
		"palletCantPlantillas": n.Templates,
		"palletLargo":          n.Length.InexactFloat64(),
		// формула бэкенда берёт palletAnchoPlantilla
		"palletAnchoPlantilla": n.Width.InexactFloat64(),
		"palletAncho":          n.Width.InexactFloat64(),
		"palletEspesor":        n.Thickness.InexactFloat64(),
		"palletEstado":         string(StateGreen),
	}
	var out api.Fields
	if err := r.api.Post(ctx, pathGreenPallets, body, &out); err != nil {
		return nil, fmt.Errorf("create pallet: %w", err)
	}
	p := FromFields(out)
	return &p, nil
}

func (r *Repo) Rate(ctx context.Context, rt Rating) error {
	if !ValidQuality(rt.Value) {
		return fmt.Errorf("rating %d out of range 1..10", rt.Value)
	}
	at := rt.At
	if at.IsZero() {
		at = time.Now()
	}
	body := map[string]any{
		"palletVerde":        map[string]int64{"idPallet": rt.PalletID},
		"calificacionValor":  float64(rt.Value),
		"calificadorUsuario": rt.By,
		"calificacionFecha":  at.UTC().Format(time.RFC3339),
	}
	if err := r.api.Post(ctx, pathRatings, body, nil); err != nil {
		return fmt.Errorf("rate pallet %d: %w", rt.PalletID, err)
	}
	return nil
}

// ListAvailableForDrying: зелёные паллеты без лота.
func (r *Repo) ListAvailableForDrying(ctx context.Context) ([]Pallet, error) {
	var raw []api.Fields
	if err := r.api.Get(ctx, pathDryingPallets, &raw); err != nil {
		return nil, fmt.Errorf("list drying pallets: %w", err)
	}
	out := make([]Pallet, 0, len(raw))
	for _, f := range raw {
		p := FromFields(f)
		if p.ID == 0 {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// FromFields: единственное место, где знают про idPallet/id_pallet/id.
func FromFields(f api.Fields) Pallet {
	rec := f.Object("recepcion")
	prov := rec.Object("proveedor")
	return Pallet{
		ID:          f.Int64("idPallet", "id_pallet", "id"),
		Number:      f.Int64("palletNumero", "pallet_numero"),
		Code:        f.String("codigo"),
		Length:      f.Decimal("palletLargo", "pallet_largo"),
		Width:       f.Decimal("palletAnchoPlantilla", "palletAncho", "pallet_ancho"),
		Thickness:   f.Decimal("palletEspesor", "pallet_espesor"),
		Templates:   f.Int64("palletCantPlantillas", "pallet_cant_plantillas"),
		State:       ParseState(f.String("palletEstado", "pallet_estado", "estado")),
		BFTReceived: f.Decimal("bftVerdeRecibido", "bft_verde_recibido"),
		BFTAccepted: f.Decimal("bftVerdeAceptado", "bft_verde_aceptado"),
		Reception: Reception{
			ID:         rec.Int64("idRecepcion", "id_recepcion", "id"),
			TripNumber: rec.String("numViaje", "num_viaje"),
			Provider: Provider{
				ID:   prov.Int64("idProveedor", "id_proveedor", "id"),
				Name: prov.String("provNombre", "prov_nombre", "nombre"),
			},
		},
	}
}
