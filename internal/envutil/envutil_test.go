package envutil

import (
	"os"
	"testing"
)

func TestParseBool(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"true":  true,
		"TRUE":  true,
		" yes ": true,
		"on":    true,
		"y":     true,
		"":      false,
		"0":     false,
		"false": false,
		"no":    false,
		"maybe": false,
	}
	for value, expected := range cases {
		if got := ParseBool(value); got != expected {
			t.Fatalf("ParseBool(%q) = %v, expected %v", value, got, expected)
		}
	}
}

func TestBoolReadsEnv(t *testing.T) {
	os.Setenv("PROMPTDESK_TEST_FLAG", "yes")
	defer os.Unsetenv("PROMPTDESK_TEST_FLAG")
	if !Bool("PROMPTDESK_TEST_FLAG") {
		t.Fatalf("expected true from env")
	}
	if Bool("PROMPTDESK_TEST_FLAG_MISSING") {
		t.Fatalf("expected false for unset env")
	}
}
