package params

import (
	"errors"
	"strings"
	"testing"
)

func TestString_Trim(t *testing.T) {
	bag := Bag{"name": "  hello  "}
	got, err := String(bag, "name", Opt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestString_NoTrim(t *testing.T) {
	bag := Bag{"name": "  hello  "}
	got, err := String(bag, "name", Opt{NoTrim: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "  hello  " {
		t.Errorf("got %q, want the raw value", got)
	}
}

func TestString_RequiredMissing(t *testing.T) {
	_, err := String(Bag{}, "to", Opt{Required: true})
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("error should wrap ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), `"to"`) {
		t.Errorf("error should name the field, got %q", err)
	}
}

func TestString_RequiredBlank(t *testing.T) {
	_, err := String(Bag{"to": "   "}, "to", Opt{Required: true})
	if err == nil {
		t.Fatal("expected error for blank required field")
	}
}

func TestString_AllowEmpty(t *testing.T) {
	got, err := String(Bag{"caption": ""}, "caption", Opt{Required: true, AllowEmpty: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestString_CoercesNumber(t *testing.T) {
	got, err := String(Bag{"id": float64(42)}, "id", Opt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "42" {
		t.Errorf("got %q, want %q", got, "42")
	}
}

func TestStringOrNumber_KeepsNumber(t *testing.T) {
	got, err := StringOrNumber(Bag{"chatId": float64(123456)}, "chatId", Opt{Required: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := got.(float64)
	if !ok || n != 123456 {
		t.Errorf("got %v (%T), want float64 123456 unmodified", got, got)
	}
}

func TestStringOrNumber_TrimsString(t *testing.T) {
	got, err := StringOrNumber(Bag{"chatId": " @user "}, "chatId", Opt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "@user" {
		t.Errorf("got %v, want %q", got, "@user")
	}
}

func TestStringOrNumber_RejectsBool(t *testing.T) {
	_, err := StringOrNumber(Bag{"chatId": true}, "chatId", Opt{})
	if err == nil {
		t.Fatal("expected error for bool value")
	}
}

func TestStringOrNumber_AbsentOptional(t *testing.T) {
	got, err := StringOrNumber(Bag{}, "chatId", Opt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for absent optional field", got)
	}
}

func TestFloat_Values(t *testing.T) {
	tests := []struct {
		name string
		bag  Bag
		opt  Opt
		want float64
		err  bool
	}{
		{"float", Bag{"n": 2.5}, Opt{}, 2.5, false},
		{"int", Bag{"n": 7}, Opt{}, 7, false},
		{"numeric string", Bag{"n": "10"}, Opt{}, 10, false},
		{"integer ok", Bag{"n": float64(3)}, Opt{Integer: true}, 3, false},
		{"integer fractional", Bag{"n": 3.5}, Opt{Integer: true}, 0, true},
		{"not a number", Bag{"n": "abc"}, Opt{}, 0, true},
		{"bool rejected", Bag{"n": true}, Opt{}, 0, true},
	}
	for _, tt := range tests {
		got, err := Float(tt.bag, "n", tt.opt)
		if tt.err {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFloat_AbsentOptional(t *testing.T) {
	got, err := Float(Bag{}, "n", Opt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", *got)
	}
}

func TestInt_RejectsFraction(t *testing.T) {
	_, err := Int(Bag{"messageId": 12.7}, "messageId", Opt{})
	if err == nil {
		t.Fatal("expected error for fractional message id")
	}
	if !strings.Contains(err.Error(), `"messageId"`) {
		t.Errorf("error should name the field, got %q", err)
	}
}

func TestInt_Value(t *testing.T) {
	got, err := Int(Bag{"messageId": float64(99)}, "messageId", Opt{Required: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != 99 {
		t.Errorf("got %v, want 99", got)
	}
}

func TestBool_Relaxed(t *testing.T) {
	tests := []struct {
		val  interface{}
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"no", false},
		{float64(1), true},
		{float64(0), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := Bool(Bag{"flag": tt.val}, "flag"); got != tt.want {
			t.Errorf("Bool(%v) = %v, want %v", tt.val, got, tt.want)
		}
	}
	if Bool(Bag{}, "flag") {
		t.Error("absent flag should read false")
	}
}

func TestStringSlice_Values(t *testing.T) {
	got, err := StringSlice(Bag{"stickerId": []interface{}{" s1 ", "s2"}}, "stickerId", Opt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "s1" || got[1] != "s2" {
		t.Errorf("got %v, want [s1 s2]", got)
	}
}

func TestStringSlice_NonStringElement(t *testing.T) {
	_, err := StringSlice(Bag{"options": []interface{}{"a", 2}}, "options", Opt{})
	if err == nil {
		t.Fatal("expected error for non-string element")
	}
}

func TestStringSlice_Absent(t *testing.T) {
	got, err := StringSlice(Bag{}, "options", Opt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for absent field", got)
	}
}

func TestFirstString_Precedence(t *testing.T) {
	bag := Bag{"chatId": "1", "channelId": "2", "to": "3"}
	if got := FirstString(bag, "chatId", "channelId", "to"); got != "1" {
		t.Errorf("got %q, want %q", got, "1")
	}
	delete(bag, "chatId")
	if got := FirstString(bag, "chatId", "channelId", "to"); got != "2" {
		t.Errorf("got %q, want %q", got, "2")
	}
}

func TestFirst_SkipsBlankAndNil(t *testing.T) {
	bag := Bag{"chatId": "  ", "channelId": nil, "to": float64(42)}
	got, ok := First(bag, "chatId", "channelId", "to")
	if !ok {
		t.Fatal("expected a match")
	}
	if n, isNum := got.(float64); !isNum || n != 42 {
		t.Errorf("got %v (%T), want float64 42", got, got)
	}
}

func TestFirst_NoMatch(t *testing.T) {
	_, ok := First(Bag{"other": "x"}, "chatId", "to")
	if ok {
		t.Fatal("expected no match")
	}
}

func TestAnySlice(t *testing.T) {
	raw, ok := AnySlice(Bag{"options": []interface{}{"a", 1}}, "options")
	if !ok || len(raw) != 2 {
		t.Fatalf("got %v ok=%v, want 2 raw elements", raw, ok)
	}
	if _, ok := AnySlice(Bag{"options": "not-array"}, "options"); ok {
		t.Error("non-array value should not match")
	}
}
