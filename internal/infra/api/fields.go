package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fields: JSON-объект в том виде, в каком его вернул бэкенд.
//
// Разные эндпоинты называют одно и то же поле по-разному (idPallet,
// id_pallet, id). Геттеры принимают список алиасов и берут первый
// непустой. Дальше границы api эти имена не уходят.
type Fields map[string]json.RawMessage

var null = []byte("null")

func (f Fields) raw(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		v, ok := f[k]
		if !ok {
			continue
		}
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, null) {
			continue
		}
		return v, true
	}
	return nil, false
}

// Has: есть ли хотя бы один из ключей с не-null значением.
func (f Fields) Has(keys ...string) bool {
	_, ok := f.raw(keys...)
	return ok
}

// String читает строку; числа и bool отдаёт в текстовом виде.
func (f Fields) String(keys ...string) string {
	for _, k := range keys {
		v, ok := f.raw(k)
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		if v[0] != '{' && v[0] != '[' {
			return string(v)
		}
	}
	return ""
}

// Decimal понимает и 81, и "81", и "81,5". Нечисловое значение
// пропускается, как отсутствующее.
func (f Fields) Decimal(keys ...string) decimal.Decimal {
	for _, k := range keys {
		v, ok := f.raw(k)
		if !ok {
			continue
		}
		text := string(v)
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			text = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			continue
		}
		return d
	}
	return decimal.Zero
}

// Int64 берёт первый ненулевой id (0 у бэкенда значит «нет»).
func (f Fields) Int64(keys ...string) int64 {
	for _, k := range keys {
		d := f.Decimal(k)
		if d.IsZero() {
			continue
		}
		return d.IntPart()
	}
	return 0
}

func (f Fields) Object(keys ...string) Fields {
	for _, k := range keys {
		v, ok := f.raw(k)
		if !ok || v[0] != '{' {
			continue
		}
		var out Fields
		if err := json.Unmarshal(v, &out); err == nil {
			return out
		}
	}
	return Fields{}
}

// Int64s читает массив id: [1,2] или [{"idPallet":1}].
func (f Fields) Int64s(objKeys []string, keys ...string) []int64 {
	v, ok := f.raw(keys...)
	if !ok || v[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		it = bytes.TrimSpace(it)
		if len(it) > 0 && it[0] == '{' {
			var obj Fields
			if err := json.Unmarshal(it, &obj); err == nil {
				if id := obj.Int64(objKeys...); id != 0 {
					out = append(out, id)
				}
			}
			continue
		}
		if id, err := strconv.ParseInt(strings.Trim(string(it), `"`), 10, 64); err == nil && id != 0 {
			out = append(out, id)
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time разбирает ISO-даты бэкенда; без зоны: в loc.
func (f Fields) Time(loc *time.Location, keys ...string) time.Time {
	s := f.String(keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Clone копирует объект, чтобы правки не задевали исходник.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// With возвращает копию с заменённым полем.
func (f Fields) With(key string, value any) Fields {
	out := f.Clone()
	raw, err := json.Marshal(value)
	if err != nil {
		return out
	}
	out[key] = raw
	return out
}
