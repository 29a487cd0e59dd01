package processor

import (
	"context"
	"encoding/json"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/ipconv"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

// handleNetdevice applies one netdevices (attribute table) event.
func (r *Router) handleNetdevice(ctx context.Context, event *models.ChangeEvent) error {
	var row models.NetdeviceRow

	if err := json.Unmarshal(event.Payload, &row); err != nil {
		r.logger.Warn().Err(err).Msg("Dropping netdevice event with malformed payload")
		return nil
	}

	switch event.Action {
	case models.ActionInsert:
		return r.netdeviceInsert(ctx, &row)
	case models.ActionUpdate:
		return r.netdeviceUpdate(ctx, event, &row)
	case models.ActionDelete:
		r.buffer.Remove(row.ID)
		r.persist()

		return nil
	default:
		r.logger.Warn().Str("action", string(event.Action)).Msg("Dropping netdevice event with unknown action")
		return nil
	}
}

// netdeviceInsert buffers the attribute half of the device and syncs the
// device when the IP half already arrived.
func (r *Router) netdeviceInsert(ctx context.Context, row *models.NetdeviceRow) error {
	rec := models.DeviceRecord{
		Name:        cleanName(row.Name),
		Description: row.Description,
		Status:      normalizeStatus(row.Status),
	}

	var op *models.SyncOp

	if r.buffer.AddDevice(row.ID, rec) {
		if full, ok := r.buffer.TakeComplete(row.ID); ok {
			r.buffer.CacheSnapshot(row.ID, full)

			op = &models.SyncOp{
				Action:   models.SyncCreate,
				Host:     ipconv.HostIdentifier(row.ID),
				DeviceID: row.ID,
				Record:   full,
			}
		}
	}

	r.persist()

	if op == nil {
		r.logBufferStatus()
		return nil
	}

	return r.dispatcher.Dispatch(ctx, op)
}

// netdeviceUpdate renames or relabels an already-synced host, falling
// back to updating the pending buffer entry when the device has not been
// handed off yet.
func (r *Router) netdeviceUpdate(ctx context.Context, event *models.ChangeEvent, row *models.NetdeviceRow) error {
	if len(event.PayloadPrevious) == 0 {
		r.logger.Warn().Int64("device_id", row.ID).Msg("Netdevice update without previous payload, skipping")
		return nil
	}

	var prev models.NetdeviceRow

	if err := json.Unmarshal(event.PayloadPrevious, &prev); err != nil {
		r.logger.Warn().Err(err).Msg("Dropping netdevice update with malformed previous payload")
		return nil
	}

	prevName := cleanName(prev.Name)
	name := cleanName(row.Name)
	status := normalizeStatus(row.Status)

	host, err := r.inventory.FindByName(ctx, prevName)
	if err != nil {
		r.logger.Error().Err(err).Str("name", prevName).Msg("Host lookup by name failed")
		host = nil
	}

	if host == nil {
		if r.buffer.UpdatePendingByName(prevName, name, row.Description, status) {
			r.logger.Info().Int64("device_id", row.ID).Str("name", name).Msg("Updated pending device in buffer")
			r.persist()
		} else {
			r.logger.Warn().
				Str("previous_name", prevName).
				Msg("Device known neither to Zabbix nor to the buffer, skipping update")
		}

		return nil
	}

	op := &models.SyncOp{
		Action:   models.SyncUpdate,
		Host:     host.Host,
		DeviceID: row.ID,
		Changes: models.HostChanges{
			Name:        &name,
			Description: &row.Description,
			Status:      &status,
		},
	}

	if err := r.dispatcher.Dispatch(ctx, op); err != nil {
		return err
	}

	cached := models.DeviceRecord{Name: name, Description: row.Description, Status: status}
	if prior, ok := r.buffer.CachedInfo(row.ID); ok {
		cached.IP = prior.IP
	}

	r.buffer.CacheSnapshot(row.ID, cached)
	r.persist()

	return nil
}
