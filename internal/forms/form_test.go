package forms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measurementForm() Form {
	return New(Schema{
		Required:     []string{"lote"},
		ItemRequired: []string{"largo", "ancho", "espesor", "plantillas"},
		OverrideKey:  "largo_original",
		MinItems:     1,
	})
}

func fullItem() map[string]string {
	return map[string]string{"largo": "8", "ancho": "81", "espesor": "1", "plantillas": "10"}
}

func TestFormStartsInvalid(t *testing.T) {
	f := measurementForm()
	assert.Equal(t, Invalid, f.Validity())
	assert.Equal(t, []string{"lote", "items"}, f.Missing())
}

func TestFormBecomesValidAndBack(t *testing.T) {
	f := measurementForm().WithHeader("lote", "12").WithItem(fullItem(), false)
	require.Equal(t, Valid, f.Validity())

	cleared := f.WithItemField(0, "espesor", "  ")
	assert.Equal(t, Invalid, cleared.Validity())
	assert.Equal(t, []string{"items[0].espesor"}, cleared.Missing())

	// исходная форма не изменилась
	assert.Equal(t, Valid, f.Validity())
	assert.Equal(t, "1", f.Items[0].Value("espesor"))

	refilled := cleared.WithItemField(0, "espesor", "1.5")
	assert.Equal(t, Valid, refilled.Validity())
}

func TestPenalizedItemNeedsOverride(t *testing.T) {
	f := measurementForm().WithHeader("lote", "12").WithItem(fullItem(), false)

	penalized := f.WithPenalized(0, true)
	assert.Equal(t, Invalid, penalized.Validity())
	assert.Equal(t, []string{"items[0].largo_original"}, penalized.Missing())

	withOverride := penalized.WithItemField(0, "largo_original", "9")
	assert.Equal(t, Valid, withOverride.Validity())

	// снять флаг: override больше не нужен
	unflagged := penalized.WithPenalized(0, false)
	assert.Equal(t, Valid, unflagged.Validity())
}

func TestRemovingLastItemInvalidates(t *testing.T) {
	f := measurementForm().WithHeader("lote", "12").WithItem(fullItem(), false)
	g := f.WithoutItem(0)

	assert.Equal(t, Invalid, g.Validity())
	assert.Equal(t, []string{"items"}, g.Missing())
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, f, f.WithoutItem(5))
}

func TestWithItemCopiesInput(t *testing.T) {
	fields := fullItem()
	f := measurementForm().WithItem(fields, false)
	fields["largo"] = ""

	assert.Equal(t, "8", f.Items[0].Value("largo"))
}

func TestFormSurvivesJSON(t *testing.T) {
	f := measurementForm().WithHeader("lote", "12").WithItem(fullItem(), true)

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	var back Form
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, f.Missing(), back.Missing())
	assert.Equal(t, Invalid, back.Validity())
	assert.Equal(t, Valid, back.WithItemField(0, "largo_original", "9").Validity())
}

func TestLotFormWithSelection(t *testing.T) {
	f := New(Schema{
		Required:     []string{"camara", "inicio", "fin"},
		ItemRequired: []string{"pallet_id"},
		MinItems:     1,
	}).WithHeader("camara", "2").WithHeader("inicio", "2026-10-14T08:00:00")

	sel := Selection{}.Toggle(4).Toggle(9)
	f = f.WithItems(sel.Items("pallet_id"))
	assert.Equal(t, []string{"fin"}, f.Missing())

	f = f.WithHeader("fin", "2026-10-20T08:00:00")
	assert.True(t, f.IsValid())

	f = f.WithItems(sel.Toggle(4).Toggle(9).Items("pallet_id"))
	assert.False(t, f.IsValid())
}
