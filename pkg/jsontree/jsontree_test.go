package jsontree

import (
	"testing"
)

func TestParseAndAccessors(t *testing.T) {
	doc := []byte(`{
		"meta": {"symbol": "AAPL", "priceHint": 2, "tradeable": true},
		"values": [1, 2.5, null, "x"]
	}`)

	v, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := v.Get("meta", "symbol").StringOr(""); got != "AAPL" {
		t.Errorf("expected symbol AAPL, got %q", got)
	}
	if hint, ok := v.Get("meta", "priceHint").Int(); !ok || hint != 2 {
		t.Errorf("expected priceHint 2, got %d (ok=%v)", hint, ok)
	}
	if !v.Get("meta", "tradeable").BoolOr(false) {
		t.Error("expected tradeable true")
	}

	values := v.Get("values")
	if values.Len() != 4 {
		t.Fatalf("expected 4 values, got %d", values.Len())
	}
	if f, ok := values.Index(1).Num(); !ok || f != 2.5 {
		t.Errorf("expected 2.5, got %v (ok=%v)", f, ok)
	}
	if !values.Index(2).IsNull() {
		t.Error("expected null element at index 2")
	}
	if !values.Index(99).IsNull() {
		t.Error("expected out-of-range index to be null")
	}
}

func TestGetMissingPathIsNull(t *testing.T) {
	v, err := Parse([]byte(`{"a": {"b": 1}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	missing := v.Get("a", "nope", "deeper")
	if !missing.IsNull() {
		t.Errorf("expected null for missing path, got kind %s", missing.Kind())
	}
	// Accessors on null never panic.
	if _, ok := missing.Num(); ok {
		t.Error("expected Num to fail on null")
	}
	if missing.Index(0).Kind() != Null {
		t.Error("expected Index on null to be null")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte(`{"unterminated": `)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDecimalKeepsLiteralPrecision(t *testing.T) {
	v, err := Parse([]byte(`{"value": 123.456789012345678901}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	d, ok := v.Get("value").Decimal()
	if !ok {
		t.Fatal("expected decimal value")
	}
	if d.String() != "123.456789012345678901" {
		t.Errorf("decimal literal mangled: %s", d.String())
	}
}

func TestNormalizeCollapsesRawWrappers(t *testing.T) {
	doc := []byte(`{
		"totalRevenue": {"raw": 365817000000, "fmt": "365.82B", "longFmt": "365,817,000,000"},
		"empty": {},
		"nested": {"inner": {"raw": 1.5, "fmt": "1.50"}},
		"list": [{"raw": 2, "fmt": "2"}, {}, 3]
	}`)

	v, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n := Normalize(v)

	if rev, ok := n.Get("totalRevenue").Int(); !ok || rev != 365817000000 {
		t.Errorf("raw wrapper not collapsed: %d (ok=%v)", rev, ok)
	}
	if !n.Get("empty").IsNull() {
		t.Error("empty object should collapse to null")
	}
	if f, ok := n.Get("nested", "inner").Num(); !ok || f != 1.5 {
		t.Errorf("nested raw wrapper not collapsed: %v (ok=%v)", f, ok)
	}

	list := n.Get("list")
	if got, ok := list.Index(0).Int(); !ok || got != 2 {
		t.Errorf("raw wrapper inside array not collapsed: %d", got)
	}
	if !list.Index(1).IsNull() {
		t.Error("empty object inside array should collapse to null")
	}
	if got, ok := list.Index(2).Int(); !ok || got != 3 {
		t.Errorf("plain scalar disturbed by normalize: %d", got)
	}
}

func TestNormalizeLeavesOriginalIntact(t *testing.T) {
	v, err := Parse([]byte(`{"x": {"raw": 7, "fmt": "7"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_ = Normalize(v)

	// The source tree still carries the wrapper object.
	if v.Get("x").Kind() != Object {
		t.Error("normalize mutated its input")
	}
}
