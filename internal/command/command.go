// Package command implements the permission-gated "/command" dispatcher:
// console input and in-game chat lines starting with '/' both funnel
// through the same Registry, each command declaring the minimum
// permission level a Source needs to run it.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Errors returned by Dispatch, mirroring the teacher's numeric command
// result codes as sentinel errors instead — idiomatic Go error handling
// in place of a bare integer code a caller has to remember to translate.
var (
	ErrUnknownCommand        = errors.New("unknown command")
	ErrBadSyntax             = errors.New("bad syntax")
	ErrInsufficientPermission = errors.New("insufficient permission")
)

// ArgKind is the type a command argument token is parsed as.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgInt
	// ArgStringRest consumes every remaining token, space-joined. Only
	// valid as a command's last argument.
	ArgStringRest
)

// Source is whoever issued a command: a connected player or the console.
type Source interface {
	// Name identifies the source in broadcast/log messages.
	Name() string
	// PermissionLevel is the source's op level: 0 for an un-opped player,
	// 4 for an opped player, 5 for the console (see internal/config.OpList).
	PermissionLevel() int
}

// ConsolePermissionLevel is always granted to stdin-originated commands.
const ConsolePermissionLevel = 5

// OpPermissionLevel is granted to usernames on the op list.
const OpPermissionLevel = 4

// Handler runs a command once its syntax and permission have both been
// validated. args is parsed per the command's declared ArgKinds: a string
// element for ArgString/ArgStringRest, an int element for ArgInt.
type Handler func(src Source, args []any) error

// Command is one registered command.
type Command struct {
	Root        string
	Description string
	PermLevel   int
	Args        []ArgKind
	Run         Handler
}

// Registry holds every registered command, keyed by its root word
// case-insensitively.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd, keyed by its root lowercased. Registering the same
// root twice replaces the earlier entry.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(cmd.Root)] = cmd
}

// Lookup returns the command registered under root, if any.
func (r *Registry) Lookup(root string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[strings.ToLower(root)]
	return cmd, ok
}

// All returns every registered command, for a help listing.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	return out
}

// Dispatch parses line (without a leading '/') and runs the matching
// command as src. A line with no tokens, an unregistered root, a
// permission shortfall, or an argument that doesn't parse as its
// declared ArgKind all return one of this package's sentinel errors,
// wrapped with enough context for a log line or a chat reply.
func (r *Registry) Dispatch(src Source, line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ErrUnknownCommand
	}

	cmd, ok := r.Lookup(tokens[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, tokens[0])
	}
	if src.PermissionLevel() < cmd.PermLevel {
		return fmt.Errorf("%w: %s requires level %d", ErrInsufficientPermission, cmd.Root, cmd.PermLevel)
	}

	rest := tokens[1:]
	args, err := parseArgs(cmd.Args, rest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSyntax, err)
	}
	return cmd.Run(src, args)
}

func parseArgs(kinds []ArgKind, tokens []string) ([]any, error) {
	args := make([]any, 0, len(kinds))
	for i, kind := range kinds {
		if kind == ArgStringRest {
			if i != len(kinds)-1 {
				return nil, fmt.Errorf("ArgStringRest must be the last argument")
			}
			args = append(args, strings.Join(tokens[i:], " "))
			return args, nil
		}
		if i >= len(tokens) {
			return nil, fmt.Errorf("missing argument %d", i+1)
		}
		switch kind {
		case ArgInt:
			v, err := strconv.Atoi(tokens[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %q is not an integer", i+1, tokens[i])
			}
			args = append(args, v)
		default:
			args = append(args, tokens[i])
		}
	}
	if len(tokens) > len(kinds) {
		return nil, fmt.Errorf("too many arguments")
	}
	return args, nil
}
