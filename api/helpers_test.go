package api

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/beka-birhanu/vinom-territory-server/service"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// newRegistry returns a registry whose lobbies never tick during a test.
func newRegistry(t *testing.T, router *service.Outbox, maxLobbies int) *service.LobbyRegistry {
	t.Helper()
	rules := game.DefaultRules()
	rules.TickPeriod = time.Hour
	r, err := service.NewLobbyRegistry(&service.Config{
		Rules:       rules,
		MaxLobbies:  maxLobbies,
		Broadcaster: router,
		Logger:      nopLogger{},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	t.Cleanup(r.StopAll)
	return r
}

func newOutbox(t *testing.T) *service.Outbox {
	t.Helper()
	o := service.NewOutbox(64, nopLogger{})
	t.Cleanup(o.Close)
	return o
}
