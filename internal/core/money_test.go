package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"72.80", 7280, true},
		{"72,8", 7280, true},
		{"0", 0, true},
		{"0.005", 1, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		7280:  "72.8",
		14560: "145.6",
		21840: "218.4",
		3800:  "38",
		0:     "0",
		1:     "0.01",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	// 72.8 * 3 as computed by a float64 client
	if err := json.Unmarshal([]byte(`{"a":218.39999999999998,"b":"69.90","c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Cents != 21840 || v.B.Cents != 6990 || v.C.Cents != 0 {
		t.Fatalf("unexpected decode: %+v", v)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":218.4,"b":69.9,"c":0}` {
		t.Fatalf("unexpected encode: %s", out)
	}
	if err := json.Unmarshal([]byte(`{"a":"x"}`), &v); err == nil {
		t.Fatalf("expected error for non-numeric money")
	}
	if err := json.Unmarshal([]byte(`{"a":-1.5}`), &v); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative money: err = %v, want ErrInvalidAmount", err)
	}
	if err := json.Unmarshal([]byte(`{"a":"72,80"}`), &v); err != nil || v.A.Cents != 7280 {
		t.Fatalf("comma decimal: got %+v, err %v", v.A, err)
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[int64]string{
		7280:   "R$ 72,80",
		0:      "R$ 0,00",
		123450: "R$ 1.234,50",
		-990:   "-R$ 9,90",
	}
	for cents, want := range cases {
		if got := FormatCurrency(Money{Cents: cents}); got != want {
			t.Fatalf("FormatCurrency(%d) = %q, want %q", cents, got, want)
		}
	}
}
