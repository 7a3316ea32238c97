// Package ingest turns a line-oriented byte source into the Scheduler
// Task that feeds raw wire lines to the Parser. It mirrors the shape of
// the NTRIP toolkit's file_handler.Handle and
// appcore.AppCore.HandleMessagesUntilEOF: a buffered reader pumped one
// unit at a time onto an outgoing channel, with EOF and transient read
// errors handled distinctly.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"ogntrack/internal/queue"
)

// lineSource is the common stepping logic shared by the live TCP
// Ingestor and the offline ReplaySource: read one line, tee it if
// configured, forward it, and translate read/send outcomes into the
// scheduler's Step() bool contract.
type lineSource struct {
	reader *bufio.Reader
	closer io.Closer
	out    *queue.Unbounded[string]
	tee    io.Writer
	logger *slog.Logger
	name   string
}

func (s *lineSource) step() bool {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				if s.logger != nil {
					s.logger.Info("ingest: end of stream", "source", s.name)
				}
				return false
			}
			// A trailing partial line with no terminator: process it
			// below, then the next Step will see a true empty-read EOF.
		} else {
			if s.logger != nil {
				s.logger.Warn("ingest: transient read error", "source", s.name, "error", err)
			}
			return true
		}
	}

	if line == "" {
		return true
	}

	if s.tee != nil {
		if _, err := s.tee.Write([]byte(line)); err != nil && s.logger != nil {
			s.logger.Warn("ingest: tee write failed", "source", s.name, "error", err)
		}
	}

	if err := s.out.Send(line); err != nil {
		if s.logger != nil {
			s.logger.Info("ingest: downstream disconnected, stopping", "source", s.name)
		}
		return false
	}

	return true
}

func (s *lineSource) close() {
	if s.closer != nil {
		s.closer.Close()
	}
}

// Option configures an Ingestor or ReplaySource at construction time.
type Option func(*lineSource)

// WithLogger attaches a logger for transient-error/EOF diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *lineSource) { s.logger = logger }
}

// WithTee appends every received line to w as well as forwarding it. Write
// errors are logged and otherwise ignored.
func WithTee(w io.Writer) Option {
	return func(s *lineSource) { s.tee = w }
}

// Ingestor opens a TCP connection to an APRS/OGN server, logs in with the
// fixed APRS-IS login line, and forwards each subsequent line it reads to
// out. It implements the scheduler.Task contract.
type Ingestor struct {
	conn net.Conn
	core *lineSource
}

// LoginInfo supplies the fields of the fixed APRS-IS login line: "user
// N0CALL pass -1 vers <client-name> <version> filter <filter-string>
// \r\n".
type LoginInfo struct {
	ClientName string
	Version    string
	Filter     string
}

func (l LoginInfo) line() string {
	return fmt.Sprintf("user N0CALL pass -1 vers %s %s filter %s \r\n", l.ClientName, l.Version, l.Filter)
}

// Dial opens a TCP connection to host:port, writes the APRS login line,
// and returns an Ingestor ready to be scheduled. Connection and login
// failures here are fatal at startup.
func Dial(host string, port int, login LoginInfo, out *queue.Unbounded[string], opts ...Option) (*Ingestor, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ingest: dial %s: %w", addr, err)
	}

	if _, err := conn.Write([]byte(login.line())); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ingest: login to %s: %w", addr, err)
	}

	core := &lineSource{
		reader: bufio.NewReader(conn),
		closer: conn,
		out:    out,
		name:   addr,
	}
	for _, opt := range opts {
		opt(core)
	}

	return &Ingestor{conn: conn, core: core}, nil
}

// Step reads one line and forwards it.
func (i *Ingestor) Step() bool {
	return i.core.step()
}

// Close closes the underlying TCP connection.
func (i *Ingestor) Close() {
	i.core.close()
}

// ReplaySource reads previously captured lines from a file instead of a
// live socket, the same line-at-a-time contract as Ingestor, grounded on
// jsonconfig.Config's file-backed input and appcore.AppCore's
// reconnect-on-EOF loop. Reaching EOF here is a normal, expected end of
// the task, exactly as it is for the live Ingestor: an empty read always
// terminates the task.
type ReplaySource struct {
	file io.Closer
	core *lineSource
}

// OpenReplay opens path for offline replay.
func OpenReplay(path string, out *queue.Unbounded[string], opts ...Option) (*ReplaySource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open replay file %s: %w", path, err)
	}

	core := &lineSource{
		reader: bufio.NewReader(file),
		closer: file,
		out:    out,
		name:   path,
	}
	for _, opt := range opts {
		opt(core)
	}

	return &ReplaySource{file: file, core: core}, nil
}

// Step reads one line and forwards it; a clean EOF ends the task.
func (r *ReplaySource) Step() bool {
	return r.core.step()
}

// Close closes the underlying file.
func (r *ReplaySource) Close() {
	r.core.close()
}
