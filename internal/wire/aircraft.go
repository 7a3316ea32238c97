package wire

import "time"

// Aircraft is one sampled position report. Every field must be populated
// before an Aircraft is constructed — the parser enforces this by refusing
// to build one until every required field has been seen (see package
// aprs). There is no sentinel/zero-value Aircraft that downstream code
// should treat as valid.
type Aircraft struct {
	// Callsign is the APRS source callsign, taken from the header of the
	// wire line (e.g. "ICA407F7A").
	Callsign string

	// ICAOAddress is the 24-bit address decoded from the beacon-id token.
	ICAOAddress ICAOAddress

	// DateTime is the UTC instant of the sample. The wire format only
	// carries a time-of-day; see package aprs for how the date is
	// reconstructed.
	DateTime time.Time

	// Latitude and Longitude are in decimal degrees.
	Latitude float64
	Longitude float64

	// GroundTrack is the compass course over ground, in degrees (0-360
	// expected).
	GroundTrack float64

	// GroundSpeed is in knots.
	GroundSpeed float64

	// GPSAltitude is in feet.
	GPSAltitude float64
}
