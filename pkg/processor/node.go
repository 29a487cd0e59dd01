package processor

import (
	"context"
	"encoding/json"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/ipconv"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

// handleNode applies one nodes (IP assignment table) event. Every node
// event must carry the netdev foreign key to be joinable.
func (r *Router) handleNode(ctx context.Context, event *models.ChangeEvent) error {
	var row models.NodeRow

	if err := json.Unmarshal(event.Payload, &row); err != nil {
		r.logger.Warn().Err(err).Msg("Dropping node event with malformed payload")
		return nil
	}

	if row.Netdev == 0 {
		r.logger.Warn().Int64("node_id", row.ID).Msg("Node event without netdev, skipping")
		return nil
	}

	switch event.Action {
	case models.ActionInsert:
		return r.nodeInsert(ctx, &row)
	case models.ActionUpdate:
		return r.nodeUpdate(ctx, event, &row)
	case models.ActionDelete:
		return r.nodeDelete(ctx, &row)
	default:
		r.logger.Warn().Str("action", string(event.Action)).Msg("Dropping node event with unknown action")
		return nil
	}
}

// nodeInsert buffers the IP half of the device and syncs the device when
// the attribute half already arrived.
func (r *Router) nodeInsert(ctx context.Context, row *models.NodeRow) error {
	ip := ipconv.ToDottedQuad(row.IPAddr)

	var op *models.SyncOp

	if r.buffer.AddIP(row.Netdev, ip) {
		if full, ok := r.buffer.TakeComplete(row.Netdev); ok {
			r.buffer.CacheSnapshot(row.Netdev, full)

			op = &models.SyncOp{
				Action:   models.SyncCreate,
				Host:     ipconv.HostIdentifier(row.Netdev),
				DeviceID: row.Netdev,
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

// nodeUpdate moves an already-synced host to its new address, resolved
// through the previous address.
func (r *Router) nodeUpdate(ctx context.Context, event *models.ChangeEvent, row *models.NodeRow) error {
	if len(event.PayloadPrevious) == 0 {
		r.logger.Warn().Int64("device_id", row.Netdev).Msg("Node update without previous payload, skipping")
		return nil
	}

	var prev models.NodeRow

	if err := json.Unmarshal(event.PayloadPrevious, &prev); err != nil {
		r.logger.Warn().Err(err).Msg("Dropping node update with malformed previous payload")
		return nil
	}

	prevIP := ipconv.ToDottedQuad(prev.IPAddr)
	newIP := ipconv.ToDottedQuad(row.IPAddr)

	host, err := r.inventory.FindByAddress(ctx, prevIP)
	if err != nil {
		r.logger.Error().Err(err).Str("ip", prevIP).Msg("Host lookup by address failed")
		host = nil
	}

	if host == nil {
		r.logger.Warn().
			Str("previous_ip", prevIP).
			Int64("device_id", row.Netdev).
			Msg("No host found for IP update, device may not be synced yet")

		return nil
	}

	op := &models.SyncOp{
		Action:   models.SyncUpdate,
		Host:     host.Host,
		DeviceID: row.Netdev,
		Changes:  models.HostChanges{IP: &newIP},
	}

	if err := r.dispatcher.Dispatch(ctx, op); err != nil {
		return err
	}

	r.buffer.RefreshCachedIP(row.Netdev, newIP)
	r.persist()

	return nil
}

// nodeDelete removes the synced host resolved by the deleted address and
// restores the device to the pending buffer, where it waits for a fresh
// IP assignment. Deleting the IP row is the only path that removes a
// host from Zabbix; attribute-row deletes are buffer-only.
func (r *Router) nodeDelete(ctx context.Context, row *models.NodeRow) error {
	ip := ipconv.ToDottedQuad(row.IPAddr)
	if ip == "" {
		return nil
	}

	host, err := r.inventory.FindByAddress(ctx, ip)
	if err != nil {
		r.logger.Error().Err(err).Str("ip", ip).Msg("Host lookup by address failed")
		host = nil
	}

	if host == nil {
		r.logger.Warn().Str("ip", ip).Msg("No host found for deleted IP, skipping")
		return nil
	}

	op := &models.SyncOp{
		Action:   models.SyncDelete,
		Host:     host.Host,
		DeviceID: row.Netdev,
	}

	if err := r.dispatcher.Dispatch(ctx, op); err != nil {
		return err
	}

	if r.buffer.Restore(row.Netdev) {
		r.persist()
	} else {
		r.logger.Warn().Int64("device_id", row.Netdev).Msg("No cached info to restore device to pending")
	}

	return nil
}
