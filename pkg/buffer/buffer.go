// Package buffer owns the join state between netdevice attribute events
// and node IP-assignment events. Devices stay pending until both a name
// and an IP are known, at which point they are handed off exactly once.
package buffer

import (
	"sync"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

// Buffer holds pending half-complete devices, IP assignments that arrived
// before their device, and the last known complete snapshot per device.
// It is mutated only from the single consumer goroutine; the mutex guards
// the snapshot writer running during shutdown.
type Buffer struct {
	mu             sync.Mutex
	pendingDevices map[int64]models.DeviceRecord
	pendingIPs     map[int64]string
	infoCache      map[int64]models.DeviceRecord
	snapshotPath   string
	logger         logger.Logger
}

// Stats reports the current number of pending entries.
type Stats struct {
	PendingDevices int `json:"pending_devices"`
	PendingIPs     int `json:"pending_ips"`
}

// New creates an empty buffer persisting to snapshotPath.
func New(snapshotPath string, log logger.Logger) *Buffer {
	return &Buffer{
		pendingDevices: make(map[int64]models.DeviceRecord),
		pendingIPs:     make(map[int64]string),
		infoCache:      make(map[int64]models.DeviceRecord),
		snapshotPath:   snapshotPath,
		logger:         log,
	}
}

// AddDevice stores or replaces the pending attribute record for a device,
// merging in any IP that arrived first. It reports whether the device is
// now complete.
func (b *Buffer) AddDevice(id int64, rec models.DeviceRecord) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ip, ok := b.pendingIPs[id]; ok {
		rec.IP = ip
	}

	b.pendingDevices[id] = rec

	if rec.Complete() {
		b.logger.Info().Int64("device_id", id).Str("ip", rec.IP).Msg("Device is now complete")
		return true
	}

	b.logger.Info().
		Int64("device_id", id).
		Str("name", rec.Name).
		Str("ip", rec.IP).
		Msg("Device buffered incomplete")

	return false
}

// AddIP stores or replaces the pending IP for a device and merges it into
// the pending attribute record when one exists. It reports whether the
// device is now complete. An IP with no matching device is kept until the
// attribute half arrives.
func (b *Buffer) AddIP(id int64, ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pendingIPs[id] = ip

	if rec, ok := b.pendingDevices[id]; ok {
		rec.IP = ip
		b.pendingDevices[id] = rec

		if rec.Complete() {
			b.logger.Info().Int64("device_id", id).Str("ip", ip).Msg("Device is now complete")
			return true
		}
	}

	b.logger.Info().Int64("device_id", id).Str("ip", ip).Msg("IP buffered")

	return false
}

// TakeComplete removes and returns the pending record for id when it is
// complete. This is the single hand-off boundary: a record is returned at
// most once, enforced by its removal from the pending sets.
func (b *Buffer) TakeComplete(id int64) (models.DeviceRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.pendingDevices[id]
	if !ok || !rec.Complete() {
		return models.DeviceRecord{}, false
	}

	delete(b.pendingDevices, id)
	delete(b.pendingIPs, id)

	return rec, true
}

// Remove discards the pending device and pending IP for id.
func (b *Buffer) Remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.pendingDevices, id)
	delete(b.pendingIPs, id)

	b.logger.Info().Int64("device_id", id).Msg("Removed device from buffer")
}

// CacheSnapshot stores the last known complete record for a device,
// overwriting any prior snapshot. Used to rebuild the pending entry when
// the device later loses its IP and must re-enter the join.
func (b *Buffer) CacheSnapshot(id int64, rec models.DeviceRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.infoCache[id] = rec
}

// CachedInfo returns the cached snapshot for id, if any.
func (b *Buffer) CachedInfo(id int64) (models.DeviceRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.infoCache[id]

	return rec, ok
}

// RefreshCachedIP updates only the IP of an existing cached snapshot.
func (b *Buffer) RefreshCachedIP(id int64, ip string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.infoCache[id]
	if !ok {
		return
	}

	rec.IP = ip
	b.infoCache[id] = rec
}

// Restore re-inserts a pending device built from the cached snapshot,
// with the IP dropped: the restore path runs precisely because the IP
// side was just removed, so the device waits for a fresh address. It
// reports whether a cache entry existed.
func (b *Buffer) Restore(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.infoCache[id]
	if !ok {
		return false
	}

	rec.IP = ""
	b.pendingDevices[id] = rec
	delete(b.pendingIPs, id)

	b.logger.Info().Int64("device_id", id).Msg("Restored device to pending buffer")

	return true
}

// UpdatePendingByName scans pending devices for one whose name matches
// prevName and updates its attribute fields in place, keeping any IP
// already merged. It reports whether a matching entry was found.
func (b *Buffer) UpdatePendingByName(prevName, name, description string, status int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, rec := range b.pendingDevices {
		if rec.Name != prevName {
			continue
		}

		rec.Name = name
		rec.Description = description
		rec.Status = status
		b.pendingDevices[id] = rec

		return true
	}

	return false
}

// Status reports pending entry counts.
func (b *Buffer) Status() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		PendingDevices: len(b.pendingDevices),
		PendingIPs:     len(b.pendingIPs),
	}
}
