package wire

import (
	"fmt"
)

// AddressType identifies the scheme that assigned an OGN beacon's address,
// encoded in bits 0-1 of an OGNIDPrefix byte.
type AddressType uint8

const (
	AddressTypeUnknown AddressType = iota
	AddressTypeICAO
	AddressTypeFLARM
	AddressTypeOgnTracker
)

func (t AddressType) String() string {
	switch t {
	case AddressTypeICAO:
		return "ICAO"
	case AddressTypeFLARM:
		return "FLARM"
	case AddressTypeOgnTracker:
		return "OgnTracker"
	default:
		return "Unknown"
	}
}

// AircraftType classifies the kind of aircraft an OGN beacon claims to be,
// encoded in bits 2-5 of an OGNIDPrefix byte. Raw codes 0 and 14 are both
// mapped to Reserved, matching the OGN tracker/receiver convention of
// leaving those codes unused.
type AircraftType uint8

const (
	AircraftTypeReserved AircraftType = iota
	AircraftTypeGlider
	AircraftTypeTowTug
	AircraftTypeHelicopter
	AircraftTypeParachute
	AircraftTypeDropPlane
	AircraftTypeHangGlider
	AircraftTypeParaGlider
	AircraftTypePoweredAircraft
	AircraftTypeJetAircraft
	AircraftTypeUFO
	AircraftTypeBalloon
	AircraftTypeAirship
	AircraftTypeUAV
	// raw code 14 is reserved, see aircraftTypeFromRaw
	AircraftTypeStaticObstacle AircraftType = 15
)

// aircraftTypeFromRaw maps a raw 4-bit aircraft-type code to its
// AircraftType, folding the two reserved raw codes (0 and 14) onto
// AircraftTypeReserved.
func aircraftTypeFromRaw(raw uint8) AircraftType {
	if raw == 0 || raw == 14 {
		return AircraftTypeReserved
	}
	return AircraftType(raw)
}

func (t AircraftType) String() string {
	names := map[AircraftType]string{
		AircraftTypeReserved: "Reserved",
		AircraftTypeGlider: "Glider",
		AircraftTypeTowTug: "TowTug",
		AircraftTypeHelicopter: "Helicopter",
		AircraftTypeParachute: "Parachute",
		AircraftTypeDropPlane: "DropPlane",
		AircraftTypeHangGlider: "HangGlider",
		AircraftTypeParaGlider: "ParaGlider",
		AircraftTypePoweredAircraft: "PoweredAircraft",
		AircraftTypeJetAircraft: "JetAircraft",
		AircraftTypeUFO: "UFO",
		AircraftTypeBalloon: "Balloon",
		AircraftTypeAirship: "Airship",
		AircraftTypeUAV: "UAV",
		AircraftTypeStaticObstacle: "StaticObstacle",
	}
	if name, ok := names[t]; ok {
		return name
	}
	return "Reserved"
}

// OGNIDPrefix is the single byte of metadata that precedes an ICAO address
// in an OGN beacon identifier (the "id" token of an APRS/OGN position
// report). Its bit layout is:
//
//	bits 0-1: address type
//	bits 2-5: aircraft type
//	bit 6: no-track flag
//	bit 7: stealth flag
type OGNIDPrefix byte

// ParseOGNIDPrefix parses a 2-hex-digit string into an OGNIDPrefix.
func ParseOGNIDPrefix(hexDigits string) (OGNIDPrefix, error) {
	if len(hexDigits) != 2 {
		return 0, fmt.Errorf("invalid OGN ID prefix %q: want exactly 2 hex digits", hexDigits)
	}
	var v uint8
	if _, err := fmt.Sscanf(hexDigits, "%02x", &v); err != nil {
		return 0, fmt.Errorf("invalid OGN ID prefix %q: %w", hexDigits, err)
	}
	return OGNIDPrefix(v), nil
}

// AddressType returns the address-type field (bits 0-1).
func (p OGNIDPrefix) AddressType() AddressType {
	return AddressType(p & 0x03)
}

// AircraftType returns the aircraft-type field (bits 2-5).
func (p OGNIDPrefix) AircraftType() AircraftType {
	raw := uint8(p>>2) & 0x0F
	return aircraftTypeFromRaw(raw)
}

// NoTrack reports whether the no-track flag (bit 6) is set.
func (p OGNIDPrefix) NoTrack() bool {
	return p&0x40 != 0
}

// Stealth reports whether the stealth flag (bit 7) is set.
func (p OGNIDPrefix) Stealth() bool {
	return p&0x80 != 0
}

func (p OGNIDPrefix) String() string {
	return fmt.Sprintf("%02X", byte(p))
}

// OGNBeaconID is the full identifier carried by an OGN "id" token: a prefix
// byte followed by a 24-bit ICAO address.
type OGNBeaconID struct {
	Prefix OGNIDPrefix
	Address ICAOAddress
}

// ParseOGNBeaconID parses exactly 8 hex digits: the first two form the
// prefix, the remaining six the ICAO address.
func ParseOGNBeaconID(hexDigits string) (OGNBeaconID, error) {
	if len(hexDigits) != 8 {
		return OGNBeaconID{}, fmt.Errorf("invalid OGN beacon id %q: want exactly 8 hex digits", hexDigits)
	}

	prefix, err := ParseOGNIDPrefix(hexDigits[:2])
	if err != nil {
		return OGNBeaconID{}, err
	}

	address, err := ParseICAOAddress(hexDigits[2:])
	if err != nil {
		return OGNBeaconID{}, fmt.Errorf("invalid OGN beacon id %q: %w", hexDigits, err)
	}

	return OGNBeaconID{Prefix: prefix, Address: address}, nil
}

func (id OGNBeaconID) String() string {
	return fmt.Sprintf("%s%06X", id.Prefix, uint32(id.Address))
}
