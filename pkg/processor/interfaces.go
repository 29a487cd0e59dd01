package processor

import (
	"context"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

//go:generate mockgen -destination=mock_processor.go -package=processor github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/processor Inventory,Enricher

// Inventory is the monitoring-inventory capability used to resolve and
// mutate Zabbix hosts. Lookup misses are (nil, nil); errors mean the call
// itself failed and the event is eligible for redelivery.
type Inventory interface {
	FindByName(ctx context.Context, name string) (*models.Host, error)
	FindByAddress(ctx context.Context, ip string) (*models.Host, error)
	CreateHost(ctx context.Context, host string, record models.DeviceRecord, tags []models.Tag) error
	UpdateHost(ctx context.Context, host string, changes models.HostChanges) error
	DeleteHost(ctx context.Context, host string) error
}

// Enricher derives best-effort host tags from a device name.
type Enricher interface {
	DeriveTags(ctx context.Context, name string) []models.Tag
}
