// Package aprs decodes APRS/OGN position-report lines into wire.Aircraft
// values. It mirrors the layered decoder shape of the NTRIP toolkit's
// RTCM handler (package rtcm/handler in github.com/goblimey/go-ntrip): a
// stateless function maps one line of wire text to zero or one typed
// result, logging and discarding whatever it cannot make sense of rather
// than surfacing an error to its caller.
package aprs

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ogntrack/internal/queue"
	"ogntrack/internal/wire"
)

// callsignDelimiter separates the APRS source callsign from the rest of
// the line.
const callsignDelimiter = ">"

// headerBodyDelimiter separates the APRS header from the position report
// body.
const headerBodyDelimiter = ":/"

// gpsPattern matches the GPS token of an APRS/OGN position report body,
// e.g. "102100h4938.77N/00848.62E^129/435/A=035443". Only the northern
// and eastern hemispheres are supported, see the design notes.
var gpsPattern = regexp.MustCompile(
	`^(?P<time>\d{6})h(?P<latDeg>\d{2})(?P<latMin>\d{2}\.\d{2})N[\\/](?P<lonDeg>\d{3})(?P<lonMin>\d{2}\.\d{2})E\^(?P<gt>\d{3})/(?P<gs>\d{3})/A=(?P<alt>\d{6})`,
)

// beaconIDPattern matches the OGN beacon-id token, e.g. "id25407F7A".
var beaconIDPattern = regexp.MustCompile(`^id(?P<id>[0-9A-Fa-f]{8})`)

// namedGroups returns the capture-group names of a compiled pattern
// matched against match, as a name->value map.
func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		groups[name] = match[i]
	}
	return groups
}

// Parser decodes APRS/OGN lines into Aircraft values. It is stateless and
// safe for concurrent use: every call to Parse is independent.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser that logs discarded/noise lines to logger at debug
// level. A nil logger disables logging.
func New(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

func (p *Parser) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

// builder accumulates the fields of one Aircraft as the tokens of a line
// are consumed. A field's presence is tracked independently of its zero
// value, since 0 is a legitimate latitude, ground track, etc.
type builder struct {
	callsign string

	haveTime bool
	dateTime time.Time

	haveLatLon bool
	latitude   float64
	longitude  float64

	haveTrackSpeedAlt bool
	groundTrack       float64
	groundSpeed       float64
	gpsAltitude       float64

	haveAddress bool
	address     wire.ICAOAddress
}

func (b *builder) missingFields() []string {
	var missing []string
	if !b.haveTime || !b.haveLatLon || !b.haveTrackSpeedAlt {
		missing = append(missing, "gps")
	}
	if !b.haveAddress {
		missing = append(missing, "beacon-id")
	}
	return missing
}

func (b *builder) build() wire.Aircraft {
	return wire.Aircraft{
		Callsign:    b.callsign,
		ICAOAddress: b.address,
		DateTime:    b.dateTime,
		Latitude:    b.latitude,
		Longitude:   b.longitude,
		GroundTrack: b.groundTrack,
		GroundSpeed: b.groundSpeed,
		GPSAltitude: b.gpsAltitude,
	}
}

// Parse decodes one wire line. It returns false if the line was discarded
// as noise or as an incomplete report, never an error, matching the
// discard-and-log policy used throughout this module.
func (p *Parser) Parse(line string, now time.Time) (wire.Aircraft, bool) {
	line = strings.TrimRight(line, "\r\n")

	callsignEnd := strings.Index(line, callsignDelimiter)
	if callsignEnd < 0 {
		p.debug("discarding line: no callsign delimiter", "line", line)
		return wire.Aircraft{}, false
	}
	callsign := line[:callsignEnd]
	rest := line[callsignEnd+len(callsignDelimiter):]

	bodyStart := strings.Index(rest, headerBodyDelimiter)
	if bodyStart < 0 {
		p.debug("discarding line: no header/body delimiter", "line", line)
		return wire.Aircraft{}, false
	}
	body := rest[bodyStart+len(headerBodyDelimiter):]

	b := builder{callsign: callsign}

	for _, token := range strings.Fields(body) {
		if p.tryGPSToken(&b, token, now) {
			continue
		}
		if p.tryBeaconIDToken(&b, token) {
			continue
		}
		// Unmatched token: noise, silently ignored.
	}

	if missing := b.missingFields(); len(missing) > 0 {
		p.debug("discarding line: missing required fields",
			"line", line, "missing", strings.Join(missing, ","))
		return wire.Aircraft{}, false
	}

	aircraft := b.build()
	p.debug("parsed position report",
		"callsign", aircraft.Callsign, "icao", aircraft.ICAOAddress.String(),
		"sample_age", describeAge(aircraft.DateTime, now))
	return aircraft, true
}

func (p *Parser) tryGPSToken(b *builder, token string, now time.Time) bool {
	match := gpsPattern.FindStringSubmatch(token)
	if match == nil {
		return false
	}
	groups := namedGroups(gpsPattern, match)

	dateTime, err := reconstructDateTime(groups["time"], now)
	if err != nil {
		p.debug("discarding GPS token: bad time", "token", token, "error", err)
		return true
	}

	latDeg, _ := strconv.ParseFloat(groups["latDeg"], 64)
	latMin, _ := strconv.ParseFloat(groups["latMin"], 64)
	lonDeg, _ := strconv.ParseFloat(groups["lonDeg"], 64)
	lonMin, _ := strconv.ParseFloat(groups["lonMin"], 64)

	gt, gtErr := strconv.ParseFloat(groups["gt"], 64)
	gs, gsErr := strconv.ParseFloat(groups["gs"], 64)
	alt, altErr := strconv.ParseFloat(groups["alt"], 64)
	if gtErr != nil || gsErr != nil || altErr != nil {
		p.debug("discarding GPS token: bad numeric field", "token", token)
		return true
	}

	b.haveTime = true
	b.dateTime = dateTime
	b.haveLatLon = true
	b.latitude = latDeg + latMin/60
	b.longitude = lonDeg + lonMin/60
	b.haveTrackSpeedAlt = true
	b.groundTrack = gt
	b.groundSpeed = gs
	b.gpsAltitude = alt

	return true
}

func (p *Parser) tryBeaconIDToken(b *builder, token string) bool {
	match := beaconIDPattern.FindStringSubmatch(token)
	if match == nil {
		return false
	}
	groups := namedGroups(beaconIDPattern, match)

	beacon, err := wire.ParseOGNBeaconID(groups["id"])
	if err != nil {
		p.debug("discarding beacon-id token: invalid address", "token", token, "error", err)
		return true
	}

	b.haveAddress = true
	b.address = beacon.Address
	return true
}

// reconstructDateTime combines the wire's HHMMSS-of-day value with today's
// UTC date to produce a UTC instant. Using UTC rather than the local date
// avoids an off-by-one-day failure mode near local midnight. A sample
// stamped just before UTC midnight but parsed just after it is dated on
// the new day, nearly a day ahead; that is judged the better trade (see
// the design notes).
func reconstructDateTime(hhmmss string, now time.Time) (time.Time, error) {
	hour, err := strconv.Atoi(hhmmss[0:2])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := strconv.Atoi(hhmmss[2:4])
	if err != nil {
		return time.Time{}, err
	}
	second, err := strconv.Atoi(hhmmss[4:6])
	if err != nil {
		return time.Time{}, err
	}

	today := now.UTC()
	return time.Date(today.Year(), today.Month(), today.Day(), hour, minute, second, 0, time.UTC), nil
}

// describeAge is a small log-formatting helper used by callers that want a
// human-readable age for a parsed sample, e.g. "3 seconds ago".
func describeAge(dateTime, now time.Time) string {
	return humanize.RelTime(dateTime, now, "ago", "from now")
}

// Pump is the scheduler.Task that connects a Parser to its upstream and
// downstream queues: block for one raw line from in, parse it, and
// forward the result to out on success. It implements the same
// block-and-forward shape as the NTRIP toolkit's file_handler.Handle
// loop, one queue.Unbounded receive per step instead of one file read.
type Pump struct {
	parser *Parser
	in     *queue.Unbounded[string]
	out    *queue.Unbounded[wire.Aircraft]
	clock  func() time.Time
}

// NewPump builds a Pump reading lines from in, decoding them with p, and
// forwarding decoded samples to out.
func NewPump(p *Parser, in *queue.Unbounded[string], out *queue.Unbounded[wire.Aircraft]) *Pump {
	return &Pump{parser: p, in: in, out: out, clock: time.Now}
}

// Step blocks for the next line; false means the upstream queue was
// closed and drained, so there is nothing left to parse. A line that
// fails to parse is discarded (already logged by Parse); a line that
// parses is forwarded, and a forwarding failure (downstream closed) also
// ends the task.
func (p *Pump) Step() bool {
	line, ok := p.in.Receive()
	if !ok {
		return false
	}

	aircraft, ok := p.parser.Parse(line, p.clock())
	if !ok {
		return true
	}

	return p.out.Send(aircraft) == nil
}
