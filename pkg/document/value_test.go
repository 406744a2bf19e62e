package document

import (
	"encoding/json"
	"testing"
)

func TestValue_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"null", Null, true},
		{"empty string", String(""), true},
		{"blank is not empty", String(" "), false},
		{"zero int", Int(0), false},
		{"false", Bool(false), false},
		{"empty sequence", Sequence(), true},
		{"empty mapping", EmptyMapping(), true},
		{"populated mapping", Mapping(map[string]Value{"a": Int(1)}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("Primary"), "Primary"},
		{"int", Int(42), "42"},
		{"fraction", Float(0.97), "0.97"},
		{"whole float", Float(95), "95"},
		{"bool", Bool(true), "true"},
		{"null", Null, ""},
		{"sequence", Sequence(String("a"), Int(1)), `["a",1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Float64(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		want    float64
		wantErr bool
	}{
		{"int", Int(620), 620, false},
		{"float", Float(0.85), 0.85, false},
		{"numeric string", String(" 43.5 "), 43.5, false},
		{"text", String("n/a"), 0, true},
		{"bool", Bool(true), 0, true},
		{"null", Null, 0, true},
		{"mapping", EmptyMapping(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.Float64()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Float64() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Float64() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var v Value
	data := []byte(`{"loan_id": 1001, "ltv": 0.97, "tags": ["a", null], "nested": {"ok": true}}`)
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if v.Kind() != KindMapping {
		t.Fatalf("Kind() = %v, want mapping", v.Kind())
	}

	id, _ := v.Get("loan_id")
	if raw, _ := id.Scalar(); raw != int64(1001) {
		t.Errorf("loan_id = %#v, want int64(1001)", raw)
	}

	ltv, _ := v.Get("ltv")
	if raw, _ := ltv.Scalar(); raw != 0.97 {
		t.Errorf("ltv = %#v, want 0.97", raw)
	}

	tags, _ := v.Get("tags")
	if tags.Len() != 2 || !tags.Items()[1].IsNull() {
		t.Errorf("tags = %v, want two items with trailing null", tags)
	}

	nested, _ := v.Get("nested")
	ok, _ := nested.Get("ok")
	if !ok.Truthy() {
		t.Errorf("nested.ok = %v, want true", ok)
	}
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	original := Mapping(map[string]Value{
		"score": Int(700),
		"items": Sequence(Mapping(map[string]Value{"name": String("x")})),
		"none":  Null,
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !Equal(original, decoded) {
		t.Errorf("round trip mismatch: %s", data)
	}
}

func TestFromAny_YAMLMaps(t *testing.T) {
	raw := map[interface{}]interface{}{
		"a": []interface{}{1, "two"},
		3:   nil,
	}
	v := FromAny(raw)

	a, ok := v.Get("a")
	if !ok || a.Len() != 2 {
		t.Fatalf("a = %v, want 2-element sequence", a)
	}
	if _, ok := v.Get("3"); !ok {
		t.Error("non-string key should be stringified")
	}
}
