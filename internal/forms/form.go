// Package forms: состояние экранных форм: обязательные поля шапки,
// список строк переменной длины и «castigado»-строки, которым нужен
// дополнительный override.
//
// Form: значение. Все правки возвращают копию, валидность каждый раз
// выводится заново из текущих полей.
package forms

import (
	"sort"
	"strconv"
	"strings"
)

type Validity string

const (
	Invalid Validity = "INVALID"
	Valid   Validity = "VALID"
)

type Item struct {
	Fields    map[string]string `json:"fields"`
	Penalized bool              `json:"penalized"`
}

func (it Item) Value(key string) string { return it.Fields[key] }

func (it Item) clone() Item {
	out := Item{Penalized: it.Penalized, Fields: make(map[string]string, len(it.Fields))}
	for k, v := range it.Fields {
		out.Fields[k] = v
	}
	return out
}

type Form struct {
	Required     []string          `json:"required"`
	ItemRequired []string          `json:"item_required"`
	OverrideKey  string            `json:"override_key"`
	MinItems     int               `json:"min_items"`
	Header       map[string]string `json:"header"`
	Items        []Item            `json:"items"`
}

// Schema описывает, что форма считает обязательным.
type Schema struct {
	Required     []string
	ItemRequired []string
	OverrideKey  string
	MinItems     int
}

func New(s Schema) Form {
	return Form{
		Required:     append([]string(nil), s.Required...),
		ItemRequired: append([]string(nil), s.ItemRequired...),
		OverrideKey:  s.OverrideKey,
		MinItems:     s.MinItems,
		Header:       map[string]string{},
	}
}

func present(v string) bool { return strings.TrimSpace(v) != "" }

func (f Form) clone() Form {
	out := f
	out.Required = append([]string(nil), f.Required...)
	out.ItemRequired = append([]string(nil), f.ItemRequired...)
	out.Header = make(map[string]string, len(f.Header))
	for k, v := range f.Header {
		out.Header[k] = v
	}
	out.Items = make([]Item, len(f.Items))
	for i, it := range f.Items {
		out.Items[i] = it.clone()
	}
	return out
}

func (f Form) Value(key string) string { return strings.TrimSpace(f.Header[key]) }

func (f Form) Len() int { return len(f.Items) }

func (f Form) WithHeader(key, value string) Form {
	out := f.clone()
	out.Header[key] = value
	return out
}

func (f Form) WithItem(fields map[string]string, penalized bool) Form {
	out := f.clone()
	it := Item{Penalized: penalized, Fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		it.Fields[k] = v
	}
	out.Items = append(out.Items, it)
	return out
}

// WithItemField меняет поле строки i; неверный индекс: форма без изменений.
func (f Form) WithItemField(i int, key, value string) Form {
	if i < 0 || i >= len(f.Items) {
		return f
	}
	out := f.clone()
	out.Items[i].Fields[key] = value
	return out
}

func (f Form) WithPenalized(i int, penalized bool) Form {
	if i < 0 || i >= len(f.Items) {
		return f
	}
	out := f.clone()
	out.Items[i].Penalized = penalized
	return out
}

func (f Form) WithoutItem(i int) Form {
	if i < 0 || i >= len(f.Items) {
		return f
	}
	out := f.clone()
	out.Items = append(out.Items[:i], out.Items[i+1:]...)
	return out
}

// WithItems заменяет все строки (например, набор выбранных pallet id).
func (f Form) WithItems(items []Item) Form {
	out := f.clone()
	out.Items = make([]Item, len(items))
	for i, it := range items {
		out.Items[i] = it.clone()
	}
	return out
}

// Missing: список незаполненных полей: "camara", "items", "items[1].largo".
func (f Form) Missing() []string {
	var missing []string
	for _, k := range f.Required {
		if !present(f.Header[k]) {
			missing = append(missing, k)
		}
	}
	if len(f.Items) < f.MinItems {
		missing = append(missing, "items")
	}
	for i, it := range f.Items {
		keys := append([]string(nil), f.ItemRequired...)
		if it.Penalized && f.OverrideKey != "" {
			keys = append(keys, f.OverrideKey)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !present(it.Fields[k]) {
				missing = append(missing, itemKey(i, k))
			}
		}
	}
	return missing
}

func (f Form) Validity() Validity {
	if len(f.Missing()) == 0 {
		return Valid
	}
	return Invalid
}

func (f Form) IsValid() bool { return f.Validity() == Valid }

func itemKey(i int, k string) string {
	return "items[" + strconv.Itoa(i) + "]." + k
}
