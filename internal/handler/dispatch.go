package handler

import (
	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
)

// RunSession is the per-session dispatch loop. It consumes the session's
// inbound queue one packet at a time, so a client's commands always execute
// in the order they arrived. Runs in its own goroutine; returns when the
// session closes, and always tears down the player's world presence on the
// way out, whether the client quit cleanly or the socket just died.
func RunSession(sess *net.Session, reg *packet.Registry, deps *Deps) {
	defer func() {
		Logout(sess, deps)
		sess.Close()
		deps.Log.Info("session closed", zap.Uint64("session", sess.ID))
	}()

	for {
		select {
		case data := <-sess.InQueue:
			if err := reg.Dispatch(sess, sess.State(), data); err != nil {
				deps.Log.Warn("dispatch failed, dropping session",
					zap.Uint64("session", sess.ID), zap.Error(err))
				return
			}
		case <-sess.Done():
			return
		}
	}
}
