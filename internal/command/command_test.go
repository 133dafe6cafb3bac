package command

import (
	"errors"
	"testing"
)

type fakeSource struct {
	name  string
	level int
}

func (f fakeSource) Name() string        { return f.name }
func (f fakeSource) PermissionLevel() int { return f.level }

func TestDispatchRunsMatchingCommand(t *testing.T) {
	r := NewRegistry()
	var gotArgs []any
	r.Register(Command{
		Root: "tp", PermLevel: 0, Args: []ArgKind{ArgString, ArgInt},
		Run: func(src Source, args []any) error {
			gotArgs = args
			return nil
		},
	})

	if err := r.Dispatch(fakeSource{"steve", 0}, "tp notch 5"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "notch" || gotArgs[1] != 5 {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	r := NewRegistry()
	err := r.Dispatch(fakeSource{"steve", 0}, "nope")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestDispatchInsufficientPermission(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Root: "stop", PermLevel: 4, Run: func(Source, []any) error { return nil }})

	err := r.Dispatch(fakeSource{"steve", 0}, "stop")
	if !errors.Is(err, ErrInsufficientPermission) {
		t.Errorf("err = %v, want ErrInsufficientPermission", err)
	}

	if err := r.Dispatch(fakeSource{"admin", 4}, "stop"); err != nil {
		t.Errorf("op-level source should be allowed: %v", err)
	}
}

func TestDispatchBadSyntax(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Root: "give", Args: []ArgKind{ArgString, ArgInt}, Run: func(Source, []any) error { return nil }})

	if err := r.Dispatch(fakeSource{"steve", 0}, "give stone notanumber"); !errors.Is(err, ErrBadSyntax) {
		t.Errorf("err = %v, want ErrBadSyntax", err)
	}
	if err := r.Dispatch(fakeSource{"steve", 0}, "give"); !errors.Is(err, ErrBadSyntax) {
		t.Errorf("missing args: err = %v, want ErrBadSyntax", err)
	}
}

func TestDispatchStringRestConsumesRemainder(t *testing.T) {
	r := NewRegistry()
	var got string
	r.Register(Command{
		Root: "say", Args: []ArgKind{ArgStringRest},
		Run: func(src Source, args []any) error {
			got = args[0].(string)
			return nil
		},
	})
	if err := r.Dispatch(fakeSource{"steve", 0}, "say hello there, world"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != "hello there, world" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleIsAlwaysMaxPermission(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Root: "stop", PermLevel: 5, Run: func(Source, []any) error { return nil }})
	console := fakeSource{"CONSOLE", ConsolePermissionLevel}
	if err := r.Dispatch(console, "stop"); err != nil {
		t.Errorf("console should pass any permission check: %v", err)
	}
}
