package dashboard

import (
	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/loader"
	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/toast"
)

// Deps are the collaborators every tab instance receives.
type Deps struct {
	Toasts    toast.Notifier
	Audit     audit.Recorder
	Snapshots loader.SnapshotStore
	Logger    *logger.Logger
}

// Normalize fills unset dependencies with no-op implementations.
func (d Deps) Normalize() Deps {
	if d.Toasts == nil {
		d.Toasts = toast.NewFeed()
	}
	if d.Audit == nil {
		d.Audit = audit.Discard
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return d
}
