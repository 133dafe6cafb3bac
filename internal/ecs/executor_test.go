package ecs

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestExecutorRunsSystemsInOrder(t *testing.T) {
	var order []string
	ex := NewExecutor[*Store](slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	ex.Add("first", func(in *Store, s *Store) error {
		order = append(order, "first")
		return nil
	})
	ex.Add("second", func(in *Store, s *Store) error {
		order = append(order, "second")
		return nil
	})

	s := NewStore()
	ex.Run(s, s)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestExecutorContinuesAfterSystemError(t *testing.T) {
	ran := false
	ex := NewExecutor[*Store](slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	ex.Add("fails", func(in *Store, s *Store) error {
		return errors.New("boom")
	})
	ex.Add("after", func(in *Store, s *Store) error {
		ran = true
		return nil
	})

	s := NewStore()
	ex.Run(s, s)

	if !ran {
		t.Error("system after a failing one should still run")
	}
}
