package app

import (
	"time"

	"go.uber.org/zap"
)

// App wires the booking store, view cache, dialog flows and the optional
// calendar sync behind the HTTP handlers.
type App struct {
	Store    Store
	Views    *ViewCache
	Flows    *FlowStore
	Calendar *CalendarSync
	Log      *zap.Logger

	// Clock is the wall clock; tests override it.
	Clock func() time.Time
}

func (a *App) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

func (a *App) logger() *zap.Logger {
	if a.Log != nil {
		return a.Log
	}
	return zap.NewNop()
}
