package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggle(t *testing.T) {
	s := Selection{}.Toggle(3).Toggle(1)
	assert.Equal(t, Selection{3, 1}, s)
	assert.True(t, s.Contains(1))

	s2 := s.Toggle(3)
	assert.Equal(t, Selection{1}, s2)
	assert.Equal(t, Selection{3, 1}, s, "original untouched")
}

func TestSelectionToggleTwiceIsIdentity(t *testing.T) {
	base := Selection{5, 8}
	for _, id := range []int64{1, 5, 8, 42} {
		assert.ElementsMatch(t, base, base.Toggle(id).Toggle(id), "id %d", id)
	}
}

func TestSelectionItems(t *testing.T) {
	items := Selection{7, 11}.Items("pallet_id")
	assert.Len(t, items, 2)
	assert.Equal(t, "11", items[1].Value("pallet_id"))
}
