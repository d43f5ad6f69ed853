package record

import "testing"

func TestString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Москва", "Москва"},
		{int64(2024), "2024"},
		{int32(2024), "2024"},
		{42, "42"},
		{float64(15), "15"},
		{1.5, "1.5"},
		{float32(2.5), "2.5"},
	}
	for _, tc := range cases {
		if got := String(tc.in); got != tc.want {
			t.Errorf("String(%#v) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestFloat(t *testing.T) {
	if v, ok := Float(float64(2.5)); !ok || v != 2.5 {
		t.Fatalf("Float(2.5) = %v, %v", v, ok)
	}
	if v, ok := Float(int64(7)); !ok || v != 7 {
		t.Fatalf("Float(int64 7) = %v, %v", v, ok)
	}
	// Postgres REAL columns decode as float32, int4 as int32.
	if v, ok := Float(float32(2.5)); !ok || v != 2.5 {
		t.Fatalf("Float(float32 2.5) = %v, %v", v, ok)
	}
	if v, ok := Float(int32(7)); !ok || v != 7 {
		t.Fatalf("Float(int32 7) = %v, %v", v, ok)
	}
	if v, ok := Float("12.25"); !ok || v != 12.25 {
		t.Fatalf(`Float("12.25") = %v, %v`, v, ok)
	}
	if _, ok := Float("abc"); ok {
		t.Fatal(`Float("abc") reported ok`)
	}
	if _, ok := Float(nil); ok {
		t.Fatal("Float(nil) reported ok")
	}
}

func TestClone(t *testing.T) {
	orig := Record{"Регион": "ЦФО", "Продажи_колво": float64(3)}
	cp := orig.Clone()
	cp["Регион"] = "СЗФО"
	if orig["Регион"] != "ЦФО" {
		t.Fatal("Clone shares storage with the original")
	}
}
