package buffer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

// snapshot is the on-disk layout of the buffer state. The file is a
// versionless full-state blob, overwritten on every save.
type snapshot struct {
	PendingDevices map[int64]models.DeviceRecord `json:"pending_devices"`
	PendingIPs     map[int64]string              `json:"pending_ips"`
	InfoCache      map[int64]models.DeviceRecord `json:"info_cache"`
}

// Save writes the full buffer state to the snapshot file. The write goes
// through a temp file and an atomic rename so that a crash mid-write
// leaves the previous snapshot intact.
func (b *Buffer) Save() error {
	b.mu.Lock()
	snap := snapshot{
		PendingDevices: b.pendingDevices,
		PendingIPs:     b.pendingIPs,
		InfoCache:      b.infoCache,
	}

	data, err := json.Marshal(snap)
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("marshal buffer snapshot: %w", err)
	}

	dir := filepath.Dir(b.snapshotPath)

	tmp, err := os.CreateTemp(dir, filepath.Base(b.snapshotPath)+".tmp*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write snapshot: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("close snapshot temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), b.snapshotPath); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// Load replaces the buffer state with the contents of the snapshot file.
// A missing file starts the buffer empty; an unreadable one is logged and
// likewise starts empty, since the source of truth can repopulate over time.
func (b *Buffer) Load() error {
	data, err := os.ReadFile(b.snapshotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Info().Str("path", b.snapshotPath).Msg("No buffer snapshot found, starting empty")
			return nil
		}

		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		b.logger.Warn().Err(err).Str("path", b.snapshotPath).Msg("Corrupted buffer snapshot, starting empty")
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pendingDevices = snap.PendingDevices
	b.pendingIPs = snap.PendingIPs
	b.infoCache = snap.InfoCache

	if b.pendingDevices == nil {
		b.pendingDevices = make(map[int64]models.DeviceRecord)
	}

	if b.pendingIPs == nil {
		b.pendingIPs = make(map[int64]string)
	}

	if b.infoCache == nil {
		b.infoCache = make(map[int64]models.DeviceRecord)
	}

	b.logger.Info().
		Int("pending_devices", len(b.pendingDevices)).
		Int("pending_ips", len(b.pendingIPs)).
		Msg("Restored buffer snapshot")

	return nil
}
