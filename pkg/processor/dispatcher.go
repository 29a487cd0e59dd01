package processor

import (
	"context"
	"fmt"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

var errUnknownSyncAction = fmt.Errorf("unknown sync action")

// Dispatcher executes sync instructions against the inventory. A
// returned error is the only condition that makes the transport
// redeliver the originating event.
type Dispatcher struct {
	inventory Inventory
	enricher  Enricher
	logger    logger.Logger
}

// NewDispatcher wires the dispatcher with its collaborators. enricher
// may be nil, in which case hosts are created without tags.
func NewDispatcher(inventory Inventory, enricher Enricher, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		inventory: inventory,
		enricher:  enricher,
		logger:    log,
	}
}

// Dispatch executes one sync instruction.
func (d *Dispatcher) Dispatch(ctx context.Context, op *models.SyncOp) error {
	d.logger.Info().
		Str("action", string(op.Action)).
		Str("host", op.Host).
		Int64("device_id", op.DeviceID).
		Msg("Dispatching sync operation")

	switch op.Action {
	case models.SyncCreate:
		var tags []models.Tag
		if d.enricher != nil {
			tags = d.enricher.DeriveTags(ctx, op.Record.Name)
		}

		return d.inventory.CreateHost(ctx, op.Host, op.Record, tags)
	case models.SyncUpdate:
		return d.inventory.UpdateHost(ctx, op.Host, op.Changes)
	case models.SyncDelete:
		return d.inventory.DeleteHost(ctx, op.Host)
	default:
		d.logger.Error().Str("action", string(op.Action)).Msg("Unknown sync action")
		return fmt.Errorf("%w: %s", errUnknownSyncAction, op.Action)
	}
}
