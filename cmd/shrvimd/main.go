// Command shrvimd runs the edit-reconciliation server: it loads an
// initial user roster and persisted text, serves the TCP wire protocol,
// and drives the admin console on stdin until told to exit or signaled.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/shrvim/shrvimd/internal/chain"
	"github.com/shrvim/shrvimd/internal/config"
	"github.com/shrvim/shrvimd/internal/console"
	"github.com/shrvim/shrvimd/internal/dispatch"
	"github.com/shrvim/shrvimd/internal/logging"
	"github.com/shrvim/shrvimd/internal/manager"
	"github.com/shrvim/shrvimd/internal/persist"
	"github.com/shrvim/shrvimd/internal/protocol"
	"github.com/shrvim/shrvimd/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("usage: shrvimd <port> <initial_user_roster_file> <text_persistence_file> [history_sqlite_file]")
	}
	port := args[0]
	rosterPath := args[1]
	textPath := args[2]
	var historyPath string
	if len(args) == 4 {
		historyPath = args[3]
	}

	defaults, err := config.LoadServerDefaults(filepath.Join(filepath.Dir(textPath), "shrvimd.yaml"))
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, defaults.LevelOrDefault())

	textSink := persist.NewFileSink(textPath)
	initialText, err := textSink.Load()
	if err != nil {
		return fmt.Errorf("load persisted text: %w", err)
	}

	c := chain.New(initialText, textSink, logger)
	mgr := manager.New(c)

	if historyPath != "" {
		historySink, err := persist.OpenHistorySink(historyPath)
		if err != nil {
			return fmt.Errorf("open history sink: %w", err)
		}
		defer historySink.Close()
		mgr.SetHistoryRecorder(historySink)
	}

	roster, err := config.LoadRoster(rosterPath)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	for _, entry := range roster {
		if err := mgr.AddUser(entry.Identity, entry.Nickname, entry.Authority); err != nil {
			logger.Error("roster: add %s: %v", entry.Identity, err)
		}
	}

	handler := func(req protocol.Request) protocol.Response {
		return dispatch.Dispatch(mgr, req)
	}
	srv := transport.NewServer(":"+port, handler, logger)

	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- srv.Run() }()

	admin := console.New(mgr, logger, func() int { return portOf(srv.Addr()) }, os.Stdout)
	adminDoneCh := make(chan struct{})
	go func() {
		admin.Run()
		close(adminDoneCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-adminDoneCh:
		logger.Info("admin console exited")
	case err := <-serveErrCh:
		if err != nil {
			logger.Error("server: %v", err)
		}
	}

	admin.Stop()
	srv.Stop()
	return nil
}

func portOf(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
