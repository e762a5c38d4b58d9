// Package console implements the line-oriented admin REPL: add/delete/
// list/online/load/save/port/exit/help commands read from stdin (spec
// §6 "Admin console").
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/shrvim/shrvimd/internal/config"
	"github.com/shrvim/shrvimd/internal/logging"
	"github.com/shrvim/shrvimd/internal/manager"
)

// Console is a readline-backed REPL driving a Manager.
type Console struct {
	mgr    *manager.Manager
	logger *logging.Logger
	port   func() int
	out    io.Writer

	stopCh chan struct{}
}

// New constructs a Console. portFn is called for the `port` command and
// lets the console report the listening port chosen by the transport
// server without importing it directly.
func New(mgr *manager.Manager, logger *logging.Logger, portFn func() int, out io.Writer) *Console {
	return &Console{
		mgr:    mgr,
		logger: logger,
		port:   portFn,
		out:    out,
		stopCh: make(chan struct{}),
	}
}

// Run drives the REPL until `exit`, EOF, or Stop is called.
func (c *Console) Run() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		input, err := line.Prompt("shrvim> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return
			}
			c.logger.Error("console: read input: %v", err)
			return
		}
		line.AppendHistory(input)

		if c.dispatch(strings.TrimSpace(input)) {
			return
		}
	}
}

// Stop signals Run to exit at its next prompt.
func (c *Console) Stop() {
	select {
	case <-c.stopCh:
		// already stopped
	default:
		close(c.stopCh)
	}
}

// dispatch runs one command line and reports whether the console
// should exit.
func (c *Console) dispatch(line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "add":
		c.cmdAdd(args)
	case "delete":
		c.cmdDelete(args)
	case "deleteall":
		c.cmdDeleteAll(args)
	case "reset":
		c.cmdReset(args)
	case "list":
		c.cmdList(args)
	case "online":
		c.cmdOnline(args)
	case "load":
		c.cmdLoad(args)
	case "save":
		c.cmdSave(args)
	case "port":
		c.cmdPort(args)
	case "help":
		c.cmdHelp()
	case "exit":
		return true
	default:
		fmt.Fprintf(c.out, "unknown command %q; try 'help'\n", cmd)
	}
	return false
}

func (c *Console) cmdAdd(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(c.out, "usage: add <id> <nick> <RO|RW>")
		return
	}
	authority, err := config.AuthorityFromString(args[2])
	if err != nil {
		fmt.Fprintln(c.out, "usage: add <id> <nick> <RO|RW>")
		return
	}
	if err := c.mgr.AddUser(args[0], args[1], authority); err != nil {
		fmt.Fprintf(c.out, "add: %v\n", err)
	}
}

func (c *Console) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: delete <id>")
		return
	}
	if err := c.mgr.DeleteUser(args[0]); err != nil {
		fmt.Fprintf(c.out, "delete: %v\n", err)
	}
}

func (c *Console) cmdDeleteAll(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(c.out, "usage: deleteall")
		return
	}
	for identity := range c.mgr.GetUsersInfo(nil, false) {
		_ = c.mgr.DeleteUser(identity)
	}
}

func (c *Console) cmdReset(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: reset <id>")
		return
	}
	if err := c.mgr.ResetUser(args[0]); err != nil {
		fmt.Fprintf(c.out, "reset: %v\n", err)
	}
}

func (c *Console) cmdList(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(c.out, "usage: list")
		return
	}
	for identity, info := range c.mgr.GetUsersInfo(nil, false) {
		fmt.Fprintf(c.out, "%s %s %s\n", identity, info.Nickname, config.AuthorityToString(info.Authority))
	}
}

func (c *Console) cmdOnline(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(c.out, "usage: online")
		return
	}
	for identity, info := range c.mgr.GetUsersInfo(nil, true) {
		fmt.Fprintf(c.out, "%s %s %s\n", identity, info.Nickname, config.AuthorityToString(info.Authority))
	}
}

func (c *Console) cmdLoad(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: load <file>")
		return
	}
	entries, err := config.LoadRoster(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "load: %v\n", err)
		return
	}
	for _, e := range entries {
		if err := c.mgr.AddUser(e.Identity, e.Nickname, e.Authority); err != nil {
			fmt.Fprintf(c.out, "load: %s: %v\n", e.Identity, err)
		}
	}
}

func (c *Console) cmdSave(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: save <file>")
		return
	}
	info := c.mgr.GetUsersInfo(nil, false)
	entries := make([]config.RosterEntry, 0, len(info))
	for identity, u := range info {
		entries = append(entries, config.RosterEntry{
			Identity:  identity,
			Nickname:  u.Nickname,
			Authority: u.Authority,
		})
	}
	if err := config.SaveRoster(args[0], entries); err != nil {
		fmt.Fprintf(c.out, "save: %v\n", err)
	}
}

func (c *Console) cmdPort(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(c.out, "usage: port")
		return
	}
	fmt.Fprintln(c.out, c.port())
}

func (c *Console) cmdHelp() {
	fmt.Fprintln(c.out, `commands:
  add <id> <nick> <RO|RW>
  delete <id>
  deleteall
  reset <id>
  list
  online
  load <file>
  save <file>
  port
  exit
  help`)
}
