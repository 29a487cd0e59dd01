package zabbix

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

const (
	interfaceTypeAgent = 1
	agentPort          = "10050"
)

// FindByName looks up a host by its visible display name. A miss returns
// (nil, nil).
func (c *Client) FindByName(ctx context.Context, name string) (*models.Host, error) {
	var hosts []hostResult

	params := map[string]interface{}{
		"filter":           map[string][]string{"name": {name}},
		"selectInterfaces": []string{"interfaceid", "ip"},
	}

	if err := c.call(ctx, "host.get", params, &hosts); err != nil {
		return nil, err
	}

	if len(hosts) == 0 {
		return nil, nil
	}

	return toHost(&hosts[0]), nil
}

// FindByAddress looks up the host owning an interface with the given IP.
// A miss returns (nil, nil).
func (c *Client) FindByAddress(ctx context.Context, ip string) (*models.Host, error) {
	var ifaces []interfaceResult

	params := map[string]interface{}{
		"filter": map[string][]string{"ip": {ip}},
	}

	if err := c.call(ctx, "hostinterface.get", params, &ifaces); err != nil {
		return nil, err
	}

	if len(ifaces) == 0 {
		return nil, nil
	}

	var hosts []hostResult

	params = map[string]interface{}{
		"hostids":          []string{ifaces[0].HostID},
		"selectInterfaces": []string{"interfaceid", "ip"},
	}

	if err := c.call(ctx, "host.get", params, &hosts); err != nil {
		return nil, err
	}

	if len(hosts) == 0 {
		return nil, nil
	}

	return toHost(&hosts[0]), nil
}

// CreateHost creates a monitored host with an agent interface, the
// configured host group and the derived tags. Creating a host that
// already exists is treated as success so redelivered events stay
// harmless.
func (c *Client) CreateHost(ctx context.Context, host string, record models.DeviceRecord, tags []models.Tag) error {
	params := createHostParams{
		Host:        host,
		Name:        record.Name,
		Description: record.Description,
		Status:      record.Status,
		Interfaces: []hostInterface{{
			Type:  interfaceTypeAgent,
			Main:  1,
			UseIP: 1,
			IP:    record.IP,
			DNS:   "",
			Port:  agentPort,
		}},
		Groups: []groupRef{{GroupID: c.config.HostGroupID}},
		Tags:   tags,
	}

	var result idsResult

	if err := c.call(ctx, "host.create", params, &result); err != nil {
		if isAlreadyExists(err) {
			c.logger.Info().Str("host", host).Msg("Host already exists in Zabbix, skipping create")
			return nil
		}

		return fmt.Errorf("create host %s: %w", host, err)
	}

	c.logger.Info().Str("host", host).Strs("host_ids", result.HostIDs).Msg("Host created")

	return nil
}

// UpdateHost applies the given field changes to the host identified by
// its technical name. An IP change updates the main interface in place.
func (c *Client) UpdateHost(ctx context.Context, host string, changes models.HostChanges) error {
	existing, err := c.findByTechnicalName(ctx, host)
	if err != nil {
		return err
	}

	if existing == nil {
		c.logger.Warn().Str("host", host).Msg("Host not found in Zabbix for update")
		return nil
	}

	if changes.IP != nil {
		if err := c.updateInterfaceIP(ctx, existing, *changes.IP); err != nil {
			return err
		}
	}

	if changes.Name == nil && changes.Description == nil && changes.Status == nil {
		return nil
	}

	params := updateHostParams{
		HostID:      existing.HostID,
		Name:        changes.Name,
		Description: changes.Description,
		Status:      changes.Status,
	}

	var result idsResult

	if err := c.call(ctx, "host.update", params, &result); err != nil {
		return fmt.Errorf("update host %s: %w", host, err)
	}

	c.logger.Info().Str("host", host).Msg("Host updated")

	return nil
}

// DeleteHost removes the host identified by its technical name. Deleting
// a host that is already gone is treated as success.
func (c *Client) DeleteHost(ctx context.Context, host string) error {
	existing, err := c.findByTechnicalName(ctx, host)
	if err != nil {
		return err
	}

	if existing == nil {
		c.logger.Info().Str("host", host).Msg("Host already absent from Zabbix, skipping delete")
		return nil
	}

	var result idsResult

	if err := c.call(ctx, "host.delete", []string{existing.HostID}, &result); err != nil {
		return fmt.Errorf("delete host %s: %w", host, err)
	}

	c.logger.Info().Str("host", host).Msg("Host deleted")

	return nil
}

// findByTechnicalName resolves a host by its stable technical identifier.
func (c *Client) findByTechnicalName(ctx context.Context, host string) (*hostResult, error) {
	var hosts []hostResult

	params := map[string]interface{}{
		"filter":           map[string][]string{"host": {host}},
		"selectInterfaces": []string{"interfaceid", "ip"},
	}

	if err := c.call(ctx, "host.get", params, &hosts); err != nil {
		return nil, fmt.Errorf("resolve host %s: %w", host, err)
	}

	if len(hosts) == 0 {
		return nil, nil
	}

	return &hosts[0], nil
}

func (c *Client) updateInterfaceIP(ctx context.Context, host *hostResult, ip string) error {
	if len(host.Interfaces) == 0 {
		c.logger.Warn().Str("host", host.Host).Msg("Host has no interface to update")
		return nil
	}

	params := hostInterface{
		InterfaceID: host.Interfaces[0].InterfaceID,
		Type:        interfaceTypeAgent,
		Main:        1,
		UseIP:       1,
		IP:          ip,
		DNS:         "",
		Port:        agentPort,
	}

	if err := c.call(ctx, "hostinterface.update", params, nil); err != nil {
		return fmt.Errorf("update interface of host %s: %w", host.Host, err)
	}

	return nil
}

func toHost(h *hostResult) *models.Host {
	out := &models.Host{
		HostID: h.HostID,
		Host:   h.Host,
		Name:   h.Name,
	}

	if len(h.Interfaces) > 0 {
		out.IP = h.Interfaces[0].IP
	}

	return out
}

func isAlreadyExists(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return strings.Contains(strings.ToLower(apiErr.Data), "already exists")
}
