package wire

import "testing"

func TestNewICAOAddress(t *testing.T) {
	testCases := []struct {
		name string
		value uint32
		wantErr bool
	}{
		{"zero", 0, false},
		{"max valid", 0x00FFFFFF, false},
		{"typical", 0x407F7A, false},
		{"one over max", 0x01000000, true},
		{"way over max", 0xFFFFFFFF, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := NewICAOAddress(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NewICAOAddress(%#x): expected an error, got address %v", tc.value, addr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewICAOAddress(%#x): unexpected error: %v", tc.value, err)
			}
			if uint32(addr) != tc.value {
				t.Errorf("NewICAOAddress(%#x) = %#x, want %#x", tc.value, uint32(addr), tc.value)
			}
		})
	}
}

func TestICAOAddressStringRoundTrip(t *testing.T) {
	addr, err := NewICAOAddress(0x407F7A)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "00407F7A"
	if got := addr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	parsed, err := ParseICAOAddress(addr.String())
	if err != nil {
		t.Fatalf("ParseICAOAddress(%q): unexpected error: %v", addr.String(), err)
	}
	if parsed != addr {
		t.Errorf("round trip through String/Parse: got %v, want %v", parsed, addr)
	}
}

func TestParseICAOAddress(t *testing.T) {
	addr, err := ParseICAOAddress("407F7A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.String() != "00407F7A" {
		t.Errorf("ParseICAOAddress(\"407F7A\").String() = %q, want %q", addr.String(), "00407F7A")
	}
}
