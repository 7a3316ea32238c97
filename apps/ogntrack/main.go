// Command ogntrack connects to an APRS/OGN feed (or replays a captured
// one), decodes position reports and keeps a short rolling history of
// every tracked aircraft, optionally printing a live terminal table. It
// follows the shape of apps/rtcmlogger/main.go: parse flags, load the
// JSON config, build a logger, then start the long-running
// activities and wait for them to finish or for a shutdown signal.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	gotoolslogger "github.com/goblimey/go-tools/logger"
	"github.com/prometheus/client_golang/prometheus"

	"ogntrack/internal/airspace"
	"ogntrack/internal/aprs"
	"ogntrack/internal/config"
	"ogntrack/internal/ingest"
	"ogntrack/internal/logging"
	"ogntrack/internal/metrics"
	"ogntrack/internal/queue"
	"ogntrack/internal/scheduler"
	"ogntrack/internal/viewer"
	"ogntrack/internal/wire"
)

// clientName and version identify this program in the APRS-IS login
// line.
const (
	clientName = "ogntrack"
	version = "0.1"

	parserQueuePeriod = 0 // the parser pump blocks on its queue; no fixed period
	ingestorPeriod = 0 // the ingestor blocks on its socket/file read; no fixed period
	storePeriod = time.Second
	viewerPeriod = 2 * time.Second

	emptyHistoryGCSchedule = "@every 1m"
)

func main() {
	var configFileName string
	var duration time.Duration
	var loggingLevel string
	var logInputDataStream string
	var readInputDataStream string
	var gui bool

	flag.StringVar(&configFileName, "config-file", "", "JSON config file (required)")
	flag.DurationVar(&duration, "duration", 0, "stop after this long (0 means run until the feed ends or the process is signalled)")
	flag.StringVar(&loggingLevel, "logging-level", logging.LevelInfo, "one of error, info, debug")
	flag.StringVar(&logInputDataStream, "log-input-data-stream", "", "optional file to tee raw input lines into")
	flag.StringVar(&readInputDataStream, "read-input-data-stream", "", "replay lines from this file instead of dialing glidernet.host:port")
	flag.BoolVar(&gui, "gui", false, "print a periodically refreshed terminal table of tracked aircraft")
	flag.Parse()

	if configFileName == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --config-file")
		os.Exit(1)
	}

	cfg, err := config.Load(configFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, rawLogger := logging.New(loggingLevel)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	lineQueue := queue.New[string]()
	sampleQueue := queue.New[wire.Aircraft]()

	var tee *os.File
	if logInputDataStream != "" {
		tee, err = os.OpenFile(logInputDataStream, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			logger.Error("cannot open tee file, continuing without it", "path", logInputDataStream, "error", err)
			tee = nil
		} else {
			defer tee.Close()
		}
	}

	var ingestOpts []ingest.Option
	ingestOpts = append(ingestOpts, ingest.WithLogger(logger))
	if tee != nil {
		ingestOpts = append(ingestOpts, ingest.WithTee(tee))
	}

	sched := scheduler.New(scheduler.WithLogger(logger), scheduler.WithMetrics(m))
	var taskIDs []scheduler.TaskID

	var ingestorID scheduler.TaskID
	var closeIngestor func()
	if readInputDataStream != "" {
		replay, err := ingest.OpenReplay(readInputDataStream, lineQueue, ingestOpts...)
		if err != nil {
			logger.Error("cannot open replay file", "error", err)
			os.Exit(1)
		}
		defer replay.Close()
		closeIngestor = replay.Close
		ingestorID = sched.AddTask("ingestor", replay, ingestorPeriod)
	} else {
		login := ingest.LoginInfo{ClientName: clientName, Version: version, Filter: cfg.GliderNet.Filter}
		ingestor, err := ingest.Dial(cfg.GliderNet.Host, cfg.GliderNet.Port, login, lineQueue, ingestOpts...)
		if err != nil {
			logger.Error("cannot connect to glidernet feed", "error", err)
			os.Exit(1)
		}
		defer ingestor.Close()
		closeIngestor = ingestor.Close
		ingestorID = sched.AddTask("ingestor", ingestor, ingestorPeriod)
	}
	taskIDs = append(taskIDs, ingestorID)

	parser := aprs.New(logger)
	pump := aprs.NewPump(parser, lineQueue, sampleQueue)
	parserID := sched.AddTask("parser", pump, parserQueuePeriod)
	taskIDs = append(taskIDs, parserID)

	store := airspace.New(cfg.BufferDuration(), sampleQueue,
		airspace.WithLogger(logger), airspace.WithMetrics(m))
	taskIDs = append(taskIDs, sched.AddTask("airspace-store", store, storePeriod))

	stopGC, err := store.StartEmptyHistoryGC(emptyHistoryGCSchedule)
	if err != nil {
		logger.Error("cannot start airspace GC", "error", err)
		os.Exit(1)
	}
	defer stopGC()

	if gui {
		term := viewer.New(store.Viewer(), os.Stdout, viewer.WithLogger(logger))
		taskIDs = append(taskIDs, sched.AddTask("viewer", term, viewerPeriod))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// SIGHUP toggles the runtime log level between the configured level
	// and debug, mirroring the NTRIP toolkit proxy's /status/loglevel endpoint
	// without exposing an HTTP surface of its own.
	toggle := make(chan os.Signal, 1)
	signal.Notify(toggle, syscall.SIGHUP)
	go watchLogLevelToggle(toggle, rawLogger, loggingLevel, logger)

	var durationTimer <-chan time.Time
	if duration > 0 {
		durationTimer = time.After(duration)
	}

	select {
	case <-shutdown:
		logger.Info("received shutdown signal")
	case <-durationTimer:
		logger.Info("duration elapsed, shutting down", "duration", duration)
	}

	// Shutdown order matters: the ingestor and parser activities each
	// block inside Step (on a socket/file read, or on the line queue's
	// blocking receive) rather than inside the scheduler's period wait,
	// so StopAll's stop signal alone cannot reach them. Closing the
	// ingestor's source unblocks its read; closing the line queue then
	// unblocks the parser's receive. Both surface as the ordinary
	// EOF/disconnect path each Step already handles.
	sched.StopAll()
	closeIngestor()
	sched.Wait(ingestorID)
	lineQueue.Close()
	sched.Wait(parserID)
	sampleQueue.Close()
	for _, id := range taskIDs {
		sched.Wait(id)
	}
}

// watchLogLevelToggle flips between configuredLevel and debug each time it
// receives a signal on toggle, until toggle is closed.
func watchLogLevelToggle(toggle <-chan os.Signal, raw *gotoolslogger.LoggerT, configuredLevel string, logger *slog.Logger) {
	debugMode := false
	for range toggle {
		debugMode = !debugMode
		if debugMode {
			logging.SetLevel(raw, logging.LevelDebug)
			logger.Info("log level toggled to debug")
		} else {
			logging.SetLevel(raw, configuredLevel)
			logger.Info("log level restored", "level", configuredLevel)
		}
	}
}
