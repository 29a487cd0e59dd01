// Package processor routes LMS change-capture events into the
// reconciliation buffer and turns completed joins into Zabbix sync
// operations.
package processor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/buffer"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

// nameMarker is the prefix LMS prepends to names of devices excluded
// from customer-facing maps; it is stripped before syncing.
const nameMarker = "#"

// Router decodes change-capture envelopes and dispatches them to the
// per-table handlers. A nil return means the event was fully handled
// (synced, buffered or intentionally dropped) and must be acknowledged;
// an error means the outward sink call failed and the event should be
// redelivered.
type Router struct {
	buffer     *buffer.Buffer
	inventory  Inventory
	dispatcher *Dispatcher
	logger     logger.Logger
}

// NewRouter wires the router with its collaborators.
func NewRouter(buf *buffer.Buffer, inventory Inventory, dispatcher *Dispatcher, log logger.Logger) *Router {
	return &Router{
		buffer:     buf,
		inventory:  inventory,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Handle processes one raw envelope. Malformed envelopes and unknown
// tables are logged and dropped, never escalated.
func (r *Router) Handle(ctx context.Context, data []byte) error {
	var event models.ChangeEvent

	if err := json.Unmarshal(data, &event); err != nil {
		r.logger.Warn().Err(err).Msg("Dropping malformed change event")
		return nil
	}

	r.logger.Info().
		Str("action", string(event.Action)).
		Str("table", event.Table).
		Int64("id", event.ID).
		Msg("Processing change event")

	switch event.Table {
	case models.TableNetdevices:
		return r.handleNetdevice(ctx, &event)
	case models.TableNodes:
		return r.handleNode(ctx, &event)
	default:
		r.logger.Warn().Str("table", event.Table).Msg("Dropping event for unknown table")
		return nil
	}
}

// persist writes the buffer snapshot, logging failures at error level.
// In-memory state stays authoritative until the next successful save.
func (r *Router) persist() {
	if err := r.buffer.Save(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to persist buffer snapshot")
	}
}

// logBufferStatus records the pending counts after a purely buffering event.
func (r *Router) logBufferStatus() {
	stats := r.buffer.Status()
	r.logger.Debug().
		Int("pending_devices", stats.PendingDevices).
		Int("pending_ips", stats.PendingIPs).
		Msg("Buffer status")
}

// cleanName strips the LMS exclusion marker from a device name.
func cleanName(name string) string {
	return strings.TrimLeft(name, nameMarker)
}

// normalizeStatus maps any non-zero LMS status onto the Zabbix
// unmonitored value.
func normalizeStatus(status int) int {
	if status == models.StatusActive {
		return models.StatusActive
	}

	return models.StatusInactive
}
