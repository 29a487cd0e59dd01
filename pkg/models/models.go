// Package models holds the wire and domain types shared across the sync pipeline.
package models

import "encoding/json"

// Action identifies the database operation captured by a change event.
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Source tables emitted by the LMS change-capture triggers.
const (
	TableNetdevices = "netdevices"
	TableNodes      = "nodes"
)

// Device status values as stored in Zabbix: 0 is monitored, 1 is unmonitored.
const (
	StatusActive   = 0
	StatusInactive = 1
)

// ChangeEvent is one change-capture envelope from the LMS database.
// PayloadPrevious is only populated for UPDATE and DELETE flows.
type ChangeEvent struct {
	Action          Action          `json:"action"`
	Table           string          `json:"table"`
	ID              int64           `json:"id"`
	Payload         json.RawMessage `json:"payload"`
	PayloadPrevious json.RawMessage `json:"payload_previous,omitempty"`
}

// NetdeviceRow is the decoded payload of a netdevices table event.
// Status defaults to active when the column is absent.
type NetdeviceRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      int    `json:"status"`
}

// NodeRow is the decoded payload of a nodes table event. Netdev is the
// foreign key linking the IP assignment to its device; IPAddr is the
// address as a big-endian integer, zero meaning no address.
type NodeRow struct {
	ID     int64  `json:"id"`
	IPAddr uint32 `json:"ipaddr"`
	Netdev int64  `json:"netdev"`
}

// DeviceRecord is the attribute set tracked for a device, both while
// pending in the buffer and as the cached last-known snapshot.
type DeviceRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      int    `json:"status"`
	IP          string `json:"ip"`
}

// Complete reports whether the record carries both halves of the join.
func (r DeviceRecord) Complete() bool {
	return r.Name != "" && r.IP != ""
}

// Host is a monitored host as known to Zabbix. Host is the stable
// technical identifier, Name the visible display name.
type Host struct {
	HostID string `json:"hostid"`
	Host   string `json:"host"`
	Name   string `json:"name"`
	IP     string `json:"ip,omitempty"`
}

// Tag is a Zabbix host tag.
type Tag struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// SyncAction is the kind of outward instruction produced by event handling.
type SyncAction string

const (
	SyncCreate SyncAction = "create"
	SyncUpdate SyncAction = "update"
	SyncDelete SyncAction = "delete"
)

// HostChanges lists the host fields an update instruction touches.
// Nil fields are left untouched in Zabbix.
type HostChanges struct {
	Name        *string
	Description *string
	Status      *int
	IP          *string
}

// SyncOp is a single outward sync instruction. Record is populated for
// creates, Changes for updates.
type SyncOp struct {
	Action   SyncAction
	Host     string
	DeviceID int64
	Record   DeviceRecord
	Changes  HostChanges
}
