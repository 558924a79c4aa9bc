package reshape

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// MealRecord is one reshaped meal row. Fields absent from the source row are
// left nil and omitted from the output; an explicit null is kept as null.
type MealRecord struct {
	SchoolName    json.RawMessage `json:"학교명,omitempty"`
	MealCode      json.RawMessage `json:"식사코드,omitempty"`
	MealName      json.RawMessage `json:"식사명,omitempty"`
	ServiceDate   json.RawMessage `json:"급식일자,omitempty"`
	Headcount     json.RawMessage `json:"급식인원수,omitempty"`
	DishNames     json.RawMessage `json:"요리명,omitempty"`
	OriginInfo    json.RawMessage `json:"원산지정보,omitempty"`
	CalorieInfo   json.RawMessage `json:"칼로리정보,omitempty"`
	NutritionInfo json.RawMessage `json:"영양정보,omitempty"`
}

// FieldMapping lists the upstream row keys and the keys they are renamed to,
// in output order.
var FieldMapping = []struct {
	Source string
	Target string
}{
	{"SCHUL_NM", "학교명"},
	{"MMEAL_SC_CODE", "식사코드"},
	{"MMEAL_SC_NM", "식사명"},
	{"MLSV_YMD", "급식일자"},
	{"MLSV_FGR", "급식인원수"},
	{"DDISH_NM", "요리명"},
	{"ORPLC_INFO", "원산지정보"},
	{"CAL_INFO", "칼로리정보"},
	{"NTR_INFO", "영양정보"},
}

func recordFrom(row gjson.Result) MealRecord {
	get := func(key string) json.RawMessage {
		v := lookup(row, key)
		if !v.Exists() {
			return nil
		}
		return json.RawMessage(v.Raw)
	}

	return MealRecord{
		SchoolName:    get("SCHUL_NM"),
		MealCode:      get("MMEAL_SC_CODE"),
		MealName:      get("MMEAL_SC_NM"),
		ServiceDate:   get("MLSV_YMD"),
		Headcount:     get("MLSV_FGR"),
		DishNames:     get("DDISH_NM"),
		OriginInfo:    get("ORPLC_INFO"),
		CalorieInfo:   get("CAL_INFO"),
		NutritionInfo: get("NTR_INFO"),
	}
}

// Field is a single key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its keys in insertion order.
type Object []Field

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// set replaces the value of an existing key in place, or appends it.
func (o Object) set(key string, value any) Object {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Field{Key: key, Value: value})
}

// Keys returns the keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, f := range o {
		keys[i] = f.Key
	}
	return keys
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encode(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := encode(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Response is the reshaped document: {"급식식단정보": [header, container]}.
type Response struct {
	Elements []Object
}

func (r Response) MarshalJSON() ([]byte, error) {
	elements := r.Elements
	if elements == nil {
		elements = []Object{}
	}
	return Object{{Key: RootKey, Value: elements}}.MarshalJSON()
}

// encode marshals v without escaping <, > and &.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
