// Package scripting embeds a Lua VM for server-side map hooks. Scripts may
// define a global on_enter_map function that runs whenever a player finishes
// arriving on a map, whether by walking through an exit, logging in, or
// teleporting.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/world"
)

// Engine wraps a single Lua state. LState is not safe for concurrent use and
// hooks fire from per-session goroutines, so every call goes through mu.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua VM and loads every .lua file under dir. A missing
// directory is not an error; the server just runs without hooks.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	e := &Engine{
		vm:  lua.NewState(),
		log: log,
	}
	if err := e.loadDir(dir); err != nil {
		e.vm.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("script directory missing, hooks disabled", zap.String("dir", dir))
			return nil
		}
		return fmt.Errorf("read script dir %s: %w", dir, err)
	}
	loaded := 0
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".lua") {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load script %s: %w", path, err)
		}
		loaded++
	}
	e.log.Info("scripts loaded", zap.String("dir", dir), zap.Int("count", loaded))
	return nil
}

// PlayerEnteredMap calls the on_enter_map hook with a table describing the
// player. Script errors are logged and swallowed: a bad hook must never break
// a map transition.
func (e *Engine) PlayerEnteredMap(p *world.PlayerInfo, mapID int16) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("on_enter_map")
	if fn.Type() != lua.LTFunction {
		return
	}

	arg := e.vm.NewTable()
	arg.RawSetString("user_id", lua.LNumber(p.UserID))
	arg.RawSetString("name", lua.LString(p.Name))
	arg.RawSetString("map_id", lua.LNumber(mapID))
	arg.RawSetString("x", lua.LNumber(p.X))
	arg.RawSetString("y", lua.LNumber(p.Y))

	err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, arg)
	if err != nil {
		e.log.Error("on_enter_map hook failed",
			zap.Int32("user_id", p.UserID),
			zap.Int16("map_id", mapID),
			zap.Error(err),
		)
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
