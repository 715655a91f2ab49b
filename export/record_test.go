package export

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRecord_JSONKeepsOrder(t *testing.T) {
	input := `{"zeta":1,"alpha":"a","mid":{"x":true},"amount":12.50}`

	var rec Record
	if err := json.Unmarshal([]byte(input), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if strings.Join(rec.Keys(), ",") != "zeta,alpha,mid,amount" {
		t.Fatalf("unexpected key order %v", rec.Keys())
	}
	amount, _ := rec.Get("amount")
	if _, ok := amount.(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", amount)
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != input {
		t.Fatalf("expected %s, got %s", input, out)
	}
}

func TestRecord_RejectsNonObject(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`[1,2]`), &rec)
	if err == nil {
		t.Fatalf("expected error")
	}
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecord_SetOverwritesInPlace(t *testing.T) {
	rec := NewRecord("a", 1, "b", 2)
	rec.Set("a", 3)
	if strings.Join(rec.Keys(), ",") != "a,b" {
		t.Fatalf("unexpected keys %v", rec.Keys())
	}
	value, _ := rec.Get("a")
	if value != 3 {
		t.Fatalf("expected overwritten value, got %v", value)
	}
}
