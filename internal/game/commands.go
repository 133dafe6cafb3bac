package game

import (
	"fmt"

	"github.com/OCharnyshevich/beta14core/internal/command"
	"github.com/OCharnyshevich/beta14core/internal/ecs"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
)

// findPlayer returns the connected player with the given username, if any.
// Lookup is linear since the player count this server targets never makes
// a name index worth the bookkeeping.
func (g *Game) findPlayer(username string) *Player {
	for _, p := range ecs.Query[*Player](g.Entities) {
		if p.Username == username {
			return p
		}
	}
	return nil
}

// registerBuiltinCommands wires the handful of commands every deployment
// needs: stopping the server, broadcasting, and op-list management.
func registerBuiltinCommands(g *Game) {
	g.Commands.Register(command.Command{
		Root: "stop", Description: "stop the server", PermLevel: command.OpPermissionLevel,
		Run: func(src command.Source, args []any) error {
			g.Log.Info("stop requested", "by", src.Name())
			g.Stop()
			return nil
		},
	})

	g.Commands.Register(command.Command{
		Root: "say", Description: "broadcast a message", PermLevel: command.OpPermissionLevel,
		Args: []command.ArgKind{command.ArgStringRest},
		Run: func(src command.Source, args []any) error {
			g.Broadcast(fmt.Sprintf("[%s] %s", src.Name(), args[0].(string)))
			return nil
		},
	})

	g.Commands.Register(command.Command{
		Root: "list", Description: "list connected players", PermLevel: 0,
		Run: func(src command.Source, args []any) error {
			names := make([]string, 0)
			for _, p := range ecs.Query[*Player](g.Entities) {
				names = append(names, fmt.Sprintf("%s (%s)", p.Username, p.UUID))
			}
			g.Log.Info("players online", "count", len(names), "names", names)
			return nil
		},
	})

	g.Commands.Register(command.Command{
		Root: "op", Description: "grant permission level 4", PermLevel: command.ConsolePermissionLevel,
		Args: []command.ArgKind{command.ArgString},
		Run: func(src command.Source, args []any) error {
			g.Ops.Add(args[0].(string))
			return g.Ops.Save(opsFilePath)
		},
	})

	g.Commands.Register(command.Command{
		Root: "deop", Description: "revoke permission level 4", PermLevel: command.ConsolePermissionLevel,
		Args: []command.ArgKind{command.ArgString},
		Run: func(src command.Source, args []any) error {
			g.Ops.Remove(args[0].(string))
			return g.Ops.Save(opsFilePath)
		},
	})

	g.Commands.Register(command.Command{
		Root: "kill", Description: "kill the named player", PermLevel: command.OpPermissionLevel,
		Args: []command.ArgKind{command.ArgString},
		Run: func(src command.Source, args []any) error {
			target := g.findPlayer(args[0].(string))
			if target == nil {
				return fmt.Errorf("no such player: %s", args[0].(string))
			}
			g.kill(target)
			return nil
		},
	})

	g.Commands.Register(command.Command{
		Root: "gamemode", Description: "set the named player's gamemode", PermLevel: command.OpPermissionLevel,
		Args: []command.ArgKind{command.ArgString, command.ArgInt},
		Run: func(src command.Source, args []any) error {
			target := g.findPlayer(args[0].(string))
			if target == nil {
				return fmt.Errorf("no such player: %s", args[0].(string))
			}
			mode := args[1].(int)
			if mode != 0 && mode != 1 {
				return fmt.Errorf("gamemode must be 0 (survival) or 1 (creative)")
			}
			target.PreviousGamemode = target.Gamemode
			target.Gamemode = uint8(mode)
			target.Chat(fmt.Sprintf("your gamemode has been set to %d", mode))
			return nil
		},
	})
}

// kill zeroes a player's health, broadcasts the death animation to anyone
// with them in view, then respawns them at the level spawn point. There is
// no damage source model yet — this is the only way health ever reaches
// zero.
func (g *Game) kill(p *Player) {
	p.PreviousHealth = p.Health
	p.Health = 0
	p.Session.Send(&protocol.UpdateHealthCB{Health: p.Health, Food: p.Hunger, Saturation: 0})
	g.BroadcastNearby(p.Position.BlockPos(), &protocol.EntityStatusCB{EntityID: p.NetworkID, Status: 3})
	ecs.SetEvent(g.Entities, p.EntityID, EntityDeathEvent{})

	spawn := g.Level.Spawn
	pos := Position{X: float64(spawn.X) + 0.5, Y: float64(spawn.Y), Z: float64(spawn.Z) + 0.5}
	p.Health = 20
	p.Hunger = 20
	p.Session.Send(&protocol.RespawnCB{Dimension: 0, Difficulty: 1, Gamemode: int8(p.Gamemode), WorldHeight: 128})
	p.Teleport(pos)
	p.Session.Send(&protocol.UpdateHealthCB{Health: p.Health, Food: p.Hunger, Saturation: 0})
	ecs.SetEvent(g.Entities, p.EntityID, PlayerSpawnEvent{Position: pos})
}

// opsFilePath is the ops.toml path commands persist back to; Game itself
// never reads it after startup, so this stays a package-level constant
// instead of plumbing a path through every command handler.
var opsFilePath = "ops.toml"
