// Package config handles the initial user roster file format and an
// optional YAML server-defaults file, neither of which is part of the
// wire protocol.
package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shrvim/shrvimd/internal/manager"
)

// RosterEntry is one line of the roster file: `<id> <nick> <RO|RW>`.
type RosterEntry struct {
	Identity  string
	Nickname  string
	Authority manager.Authority
}

// AuthorityToString renders an Authority as the roster file's token.
func AuthorityToString(a manager.Authority) string {
	if a == manager.Readwrite {
		return "RW"
	}
	return "RO"
}

// AuthorityFromString parses the roster file's authority token.
func AuthorityFromString(s string) (manager.Authority, error) {
	switch strings.ToUpper(s) {
	case "RO":
		return manager.Readonly, nil
	case "RW":
		return manager.Readwrite, nil
	default:
		return 0, fmt.Errorf("config: unknown authority token %q (want RO or RW)", s)
	}
}

// LoadRoster reads one `<id> <nick> <RO|RW>` entry per line. A missing
// file is treated as an empty roster (matching the persistence file's
// "absence on startup" policy for initial content).
func LoadRoster(path string) ([]RosterEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: open roster %s: %w", path, err)
	}
	defer f.Close()

	var entries []RosterEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("config: malformed roster line %q", line)
		}
		authority, err := AuthorityFromString(fields[2])
		if err != nil {
			return nil, err
		}
		entries = append(entries, RosterEntry{
			Identity:  fields[0],
			Nickname:  fields[1],
			Authority: authority,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read roster %s: %w", path, err)
	}
	return entries, nil
}

// SaveRoster writes entries sorted by identity, one `<id> <nick>
// <RO|RW>` line each.
func SaveRoster(path string, entries []RosterEntry) error {
	sorted := make([]RosterEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Identity < sorted[j].Identity })

	var sb strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&sb, "%s %s %s\n", e.Identity, e.Nickname, AuthorityToString(e.Authority))
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("config: save roster %s: %w", path, err)
	}
	return nil
}
