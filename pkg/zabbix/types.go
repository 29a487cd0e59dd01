package zabbix

import (
	"encoding/json"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

// rpcRequest is a Zabbix JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Auth    string      `json:"auth,omitempty"`
	ID      string      `json:"id"`
}

// rpcResponse is a Zabbix JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *APIError       `json:"error"`
	ID      string          `json:"id"`
}

// APIError is the error object returned by the Zabbix API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *APIError) Error() string {
	return e.Message + ": " + e.Data
}

// hostResult is a host object as returned by host.get.
type hostResult struct {
	HostID     string            `json:"hostid"`
	Host       string            `json:"host"`
	Name       string            `json:"name"`
	Interfaces []interfaceResult `json:"interfaces,omitempty"`
}

// interfaceResult is a host interface as returned by hostinterface.get.
type interfaceResult struct {
	InterfaceID string `json:"interfaceid"`
	HostID      string `json:"hostid"`
	IP          string `json:"ip"`
}

// hostGroup is a host group as returned by hostgroup.get.
type hostGroup struct {
	GroupID string `json:"groupid"`
	Name    string `json:"name"`
}

// groupRef references a host group in host.create params.
type groupRef struct {
	GroupID string `json:"groupid"`
}

// hostInterface is the interface definition sent on host.create and
// hostinterface.update. Type 1 is the Zabbix agent interface on the
// default port; UseIP 1 addresses the host by IP rather than DNS.
type hostInterface struct {
	InterfaceID string `json:"interfaceid,omitempty"`
	Type        int    `json:"type"`
	Main        int    `json:"main"`
	UseIP       int    `json:"useip"`
	IP          string `json:"ip"`
	DNS         string `json:"dns"`
	Port        string `json:"port"`
}

// createHostParams is the host.create parameter object.
type createHostParams struct {
	Host        string          `json:"host"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      int             `json:"status"`
	Interfaces  []hostInterface `json:"interfaces"`
	Groups      []groupRef      `json:"groups"`
	Tags        []models.Tag    `json:"tags,omitempty"`
}

// updateHostParams is the host.update parameter object. Pointer fields
// are omitted when the corresponding host attribute is not being changed.
type updateHostParams struct {
	HostID      string  `json:"hostid"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *int    `json:"status,omitempty"`
}

// idsResult carries the id lists returned by create/delete calls.
type idsResult struct {
	HostIDs []string `json:"hostids"`
}
