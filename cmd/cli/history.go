package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const maxHistorySize = 1000

// shellHistory persists commands across sessions. liner owns arrow-key
// recall; recent backs the history command.
type shellHistory struct {
	path   string
	recent []string
}

func openHistory(line *liner.State) (*shellHistory, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	h := &shellHistory{path: filepath.Join(home, ".amq_history")}

	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := line.ReadHistory(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	for _, cmd := range strings.Split(string(data), "\n") {
		h.push(strings.TrimSpace(cmd))
	}
	return h, nil
}

func (h *shellHistory) add(line *liner.State, cmd string) {
	line.AppendHistory(cmd)
	h.push(cmd)
}

func (h *shellHistory) push(cmd string) {
	if cmd == "" {
		return
	}
	// Don't add duplicates of the last command
	if n := len(h.recent); n > 0 && h.recent[n-1] == cmd {
		return
	}
	h.recent = append(h.recent, cmd)
	if len(h.recent) > maxHistorySize {
		h.recent = h.recent[len(h.recent)-maxHistorySize:]
	}
}

func (h *shellHistory) save(line *liner.State) error {
	f, err := os.Create(h.path)
	if err != nil {
		return err
	}
	if _, err := line.WriteHistory(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// last returns the n most recent commands, or all of them for n <= 0.
func (h *shellHistory) last(n int) []string {
	if n <= 0 || n > len(h.recent) {
		n = len(h.recent)
	}
	return h.recent[len(h.recent)-n:]
}
