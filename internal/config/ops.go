package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml"
)

// OpList is the ops.toml allow-list: usernames granted elevated permission
// level 4 in-game. The console is always permission level 5.
type OpList struct {
	Ops []string `toml:"ops"`
}

// LoadOpList reads path. A missing file yields an empty list, not an error.
func LoadOpList(path string) (*OpList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &OpList{}, nil
		}
		return nil, fmt.Errorf("read ops %s: %w", path, err)
	}
	var ol OpList
	if err := toml.Unmarshal(data, &ol); err != nil {
		return nil, fmt.Errorf("parse ops %s: %w", path, err)
	}
	return &ol, nil
}

// Save writes the op list back to path as TOML.
func (ol *OpList) Save(path string) error {
	data, err := toml.Marshal(ol)
	if err != nil {
		return fmt.Errorf("marshal ops: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// IsOp reports whether username (case-insensitive) is in the op list.
func (ol *OpList) IsOp(username string) bool {
	for _, name := range ol.Ops {
		if strings.EqualFold(name, username) {
			return true
		}
	}
	return false
}

// Add appends username if not already present.
func (ol *OpList) Add(username string) {
	if ol.IsOp(username) {
		return
	}
	ol.Ops = append(ol.Ops, username)
}

// Remove deletes username (case-insensitive) if present.
func (ol *OpList) Remove(username string) {
	out := ol.Ops[:0]
	for _, name := range ol.Ops {
		if !strings.EqualFold(name, username) {
			out = append(out, name)
		}
	}
	ol.Ops = out
}
