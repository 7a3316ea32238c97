package wire

import "testing"

func TestOGNIDPrefixFields(t *testing.T) {
	testCases := []struct {
		name string
		raw byte
		addressType AddressType
		aircraft AircraftType
		noTrack bool
		stealth bool
	}{
		{"all zero", 0x00, AddressTypeUnknown, AircraftTypeReserved, false, false},
		{"icao glider", 0x05, AddressTypeICAO, AircraftTypeGlider, false, false},
		{"flarm powered stealth", 0xA2, AddressTypeFLARM, aircraftTypeFromRaw(0x08), false, true},
		{"no track set", 0x42, AddressTypeFLARM, AircraftTypeReserved, true, false},
		{"raw 14 folds to reserved", 0x38, AddressTypeUnknown, AircraftTypeReserved, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := OGNIDPrefix(tc.raw)
			if got := p.AddressType(); got != tc.addressType {
				t.Errorf("AddressType() = %v, want %v", got, tc.addressType)
			}
			if got := p.AircraftType(); got != tc.aircraft {
				t.Errorf("AircraftType() = %v, want %v", got, tc.aircraft)
			}
			if got := p.NoTrack(); got != tc.noTrack {
				t.Errorf("NoTrack() = %v, want %v", got, tc.noTrack)
			}
			if got := p.Stealth(); got != tc.stealth {
				t.Errorf("Stealth() = %v, want %v", got, tc.stealth)
			}
		})
	}
}

func TestParseOGNIDPrefixRejectsBadLength(t *testing.T) {
	if _, err := ParseOGNIDPrefix("A"); err == nil {
		t.Error("expected an error for a 1-digit prefix")
	}
	if _, err := ParseOGNIDPrefix("ABC"); err == nil {
		t.Error("expected an error for a 3-digit prefix")
	}
}

func TestParseOGNBeaconID(t *testing.T) {
	id, err := ParseOGNBeaconID("25407F7A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Address.String() != "00407F7A" {
		t.Errorf("Address = %v, want 00407F7A", id.Address)
	}
	if id.Prefix != OGNIDPrefix(0x25) {
		t.Errorf("Prefix = %v, want %v", id.Prefix, OGNIDPrefix(0x25))
	}
	if got, want := id.String(), "25407F7A"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseOGNBeaconIDRejectsBadLength(t *testing.T) {
	if _, err := ParseOGNBeaconID("407F7A"); err == nil {
		t.Error("expected an error for a 6-digit beacon id")
	}
}
