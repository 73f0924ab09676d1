package forms

import "strconv"

// Selection: набор выбранных id с порядком выбора. Toggle добавляет
// отсутствующий id и убирает присутствующий; исходный срез не меняется.
type Selection []int64

func (s Selection) Contains(id int64) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

func (s Selection) Toggle(id int64) Selection {
	out := make(Selection, 0, len(s)+1)
	found := false
	for _, v := range s {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

func (s Selection) Len() int { return len(s) }

// Items превращает выбор в строки формы с полем key.
func (s Selection) Items(key string) []Item {
	out := make([]Item, 0, len(s))
	for _, id := range s {
		out = append(out, Item{Fields: map[string]string{key: formatID(id)}})
	}
	return out
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
