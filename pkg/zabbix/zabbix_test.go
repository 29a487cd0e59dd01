package zabbix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

// fakeZabbix is a minimal JSON-RPC endpoint scripted per method.
type fakeZabbix struct {
	t        *testing.T
	handlers map[string]func(params json.RawMessage) (interface{}, *APIError)
	calls    []string
}

func newFakeZabbix(t *testing.T) *fakeZabbix {
	t.Helper()

	f := &fakeZabbix{t: t, handlers: make(map[string]func(json.RawMessage) (interface{}, *APIError))}

	f.handlers["user.login"] = func(json.RawMessage) (interface{}, *APIError) {
		return "token-123", nil
	}
	f.handlers["hostgroup.get"] = func(json.RawMessage) (interface{}, *APIError) {
		return []hostGroup{{GroupID: "1", Name: "Network devices"}}, nil
	}

	return f
}

func (f *fakeZabbix) on(method string, handler func(json.RawMessage) (interface{}, *APIError)) {
	f.handlers[method] = handler
}

func (f *fakeZabbix) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.Equal(f.t, "/api_jsonrpc.php", r.URL.Path)

	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		Auth   string          `json:"auth"`
		ID     string          `json:"id"`
	}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	f.calls = append(f.calls, req.Method)

	if req.Method != "user.login" {
		require.Equal(f.t, "token-123", req.Auth, "authenticated call must carry the session token")
	}

	handler, ok := f.handlers[req.Method]
	require.True(f.t, ok, "unexpected method %s", req.Method)

	result, apiErr := handler(req.Params)

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if apiErr != nil {
		resp["error"] = apiErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func newTestClient(t *testing.T, f *fakeZabbix) (*Client, func()) {
	t.Helper()

	server := httptest.NewServer(f)

	client := NewClient(Config{
		URL:         server.URL,
		Username:    "Admin",
		Password:    "zabbix",
		HostGroupID: "1",
	}, logger.NewTestLogger())

	require.NoError(t, client.Connect(context.Background()))

	return client, server.Close
}

func TestConnectLogsInAndVerifiesGroup(t *testing.T) {
	f := newFakeZabbix(t)
	_, done := newTestClient(t, f)
	defer done()

	assert.Equal(t, []string{"user.login", "hostgroup.get"}, f.calls)
}

func TestConnectFallsBackToFirstGroup(t *testing.T) {
	f := newFakeZabbix(t)

	first := true
	f.on("hostgroup.get", func(json.RawMessage) (interface{}, *APIError) {
		if first {
			first = false
			return []hostGroup{}, nil
		}

		return []hostGroup{{GroupID: "7", Name: "Fallback"}}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	assert.Equal(t, "7", client.config.HostGroupID)
}

func TestCallWithoutLogin(t *testing.T) {
	client := NewClient(Config{URL: "http://example.invalid"}, logger.NewTestLogger())

	_, err := client.FindByName(context.Background(), "rtr-1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestFindByName(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return []hostResult{{
			HostID:     "10105",
			Host:       "device-42",
			Name:       "rtr-1",
			Interfaces: []interfaceResult{{InterfaceID: "55", IP: "192.168.1.65"}},
		}}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	host, err := client.FindByName(context.Background(), "rtr-1")
	require.NoError(t, err)
	require.NotNil(t, host)
	assert.Equal(t, "device-42", host.Host)
	assert.Equal(t, "192.168.1.65", host.IP)
}

func TestFindByNameMiss(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return []hostResult{}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	host, err := client.FindByName(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, host, "a lookup miss is nil, not an error")
}

func TestFindByAddress(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("hostinterface.get", func(json.RawMessage) (interface{}, *APIError) {
		return []interfaceResult{{InterfaceID: "55", HostID: "10105", IP: "192.168.1.65"}}, nil
	})
	f.on("host.get", func(params json.RawMessage) (interface{}, *APIError) {
		var p struct {
			HostIDs []string `json:"hostids"`
		}
		require.NoError(t, json.Unmarshal(params, &p))
		require.Equal(t, []string{"10105"}, p.HostIDs)

		return []hostResult{{HostID: "10105", Host: "device-42", Name: "rtr-1"}}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	host, err := client.FindByAddress(context.Background(), "192.168.1.65")
	require.NoError(t, err)
	require.NotNil(t, host)
	assert.Equal(t, "device-42", host.Host)
}

func TestFindByAddressMiss(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("hostinterface.get", func(json.RawMessage) (interface{}, *APIError) {
		return []interfaceResult{}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	host, err := client.FindByAddress(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, host)
}

func TestCreateHost(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.create", func(params json.RawMessage) (interface{}, *APIError) {
		var p createHostParams
		require.NoError(t, json.Unmarshal(params, &p))

		assert.Equal(t, "device-42", p.Host)
		assert.Equal(t, "rtr-1", p.Name)
		require.Len(t, p.Interfaces, 1)
		assert.Equal(t, "192.168.1.65", p.Interfaces[0].IP)
		assert.Equal(t, []groupRef{{GroupID: "1"}}, p.Groups)
		assert.Equal(t, []models.Tag{{Tag: "type", Value: "router"}}, p.Tags)

		return idsResult{HostIDs: []string{"10105"}}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	record := models.DeviceRecord{Name: "rtr-1", IP: "192.168.1.65", Status: models.StatusActive}
	tags := []models.Tag{{Tag: "type", Value: "router"}}

	assert.NoError(t, client.CreateHost(context.Background(), "device-42", record, tags))
}

func TestCreateHostAlreadyExistsIsIdempotent(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.create", func(json.RawMessage) (interface{}, *APIError) {
		return nil, &APIError{Code: -32602, Message: "Invalid params.", Data: `Host with the same name "device-42" already exists.`}
	})

	client, done := newTestClient(t, f)
	defer done()

	err := client.CreateHost(context.Background(), "device-42", models.DeviceRecord{Name: "rtr-1", IP: "10.0.0.1"}, nil)
	assert.NoError(t, err, "re-creating an existing host must not fail the dispatch loop")
}

func TestUpdateHostRename(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return []hostResult{{HostID: "10105", Host: "device-42"}}, nil
	})
	f.on("host.update", func(params json.RawMessage) (interface{}, *APIError) {
		var p updateHostParams
		require.NoError(t, json.Unmarshal(params, &p))

		assert.Equal(t, "10105", p.HostID)
		require.NotNil(t, p.Name)
		assert.Equal(t, "rtr-1b", *p.Name)
		assert.Nil(t, p.Status)

		return idsResult{HostIDs: []string{"10105"}}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	name := "rtr-1b"
	err := client.UpdateHost(context.Background(), "device-42", models.HostChanges{Name: &name})
	assert.NoError(t, err)
}

func TestUpdateHostIPOnly(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return []hostResult{{
			HostID:     "10105",
			Host:       "device-42",
			Interfaces: []interfaceResult{{InterfaceID: "55", IP: "192.168.1.65"}},
		}}, nil
	})
	f.on("hostinterface.update", func(params json.RawMessage) (interface{}, *APIError) {
		var p hostInterface
		require.NoError(t, json.Unmarshal(params, &p))

		assert.Equal(t, "55", p.InterfaceID)
		assert.Equal(t, "192.168.0.1", p.IP)

		return map[string][]string{"interfaceids": {"55"}}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	ip := "192.168.0.1"
	require.NoError(t, client.UpdateHost(context.Background(), "device-42", models.HostChanges{IP: &ip}))

	// host.update must not be called for a pure IP change.
	assert.NotContains(t, f.calls, "host.update")
}

func TestUpdateHostMissingIsNoop(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return []hostResult{}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	name := "rtr-1b"
	assert.NoError(t, client.UpdateHost(context.Background(), "device-42", models.HostChanges{Name: &name}))
}

func TestDeleteHost(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return []hostResult{{HostID: "10105", Host: "device-42"}}, nil
	})
	f.on("host.delete", func(params json.RawMessage) (interface{}, *APIError) {
		var ids []string
		require.NoError(t, json.Unmarshal(params, &ids))
		assert.Equal(t, []string{"10105"}, ids)

		return idsResult{HostIDs: []string{"10105"}}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	assert.NoError(t, client.DeleteHost(context.Background(), "device-42"))
}

func TestDeleteHostAlreadyGoneIsIdempotent(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return []hostResult{}, nil
	})

	client, done := newTestClient(t, f)
	defer done()

	assert.NoError(t, client.DeleteHost(context.Background(), "device-42"))
	assert.NotContains(t, f.calls, "host.delete")
}

func TestAPIErrorSurfaces(t *testing.T) {
	f := newFakeZabbix(t)
	f.on("host.get", func(json.RawMessage) (interface{}, *APIError) {
		return nil, &APIError{Code: -32602, Message: "Invalid params.", Data: "No permissions."}
	})

	client, done := newTestClient(t, f)
	defer done()

	_, err := client.FindByName(context.Background(), "rtr-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No permissions")
}
