package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmar42/nsot/internal/config"
	"github.com/dmar42/nsot/internal/errs"
)

// runCommand executes the CLI against srv and returns stdout.
func runCommand(t *testing.T, srv *httptest.Server, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	cfg.URL = srv.URL + "/api"

	var out bytes.Buffer
	inv := NewInvocation(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &out)
	root := NewRootCommand(inv)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDevicesList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sites/1/devices/", r.URL.Path)
		w.Write([]byte(`[{"id": 1, "hostname": "gw1-sfo", "attributes": {"owner": "netops"}}]`))
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, config.Config{}, "devices", "list", "-s", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "gw1-sfo")
	assert.Contains(t, out, "owner=netops")
}

func TestNetworksListSupernets_ResolvesNaturalKey(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/api/sites/1/networks/":
			assert.Equal(t, "10.0.0.0/24", r.URL.Query().Get("cidr"))
			w.Write([]byte(`[{"id": 5, "cidr": "10.0.0.0/24"}]`))
		case "/api/sites/1/networks/5/supernets/":
			w.Write([]byte(`[{"id": 2, "cidr": "10.0.0.0/8"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, config.Config{},
		"networks", "list", "-s", "1", "-c", "10.0.0.0/24", "supernets")
	require.NoError(t, err)

	require.Equal(t, []string{"/api/sites/1/networks/", "/api/sites/1/networks/5/supernets/"}, paths)
	assert.Contains(t, out, "10.0.0.0/8")
}

func TestNetworksListSupernets_ExplicitIDSkipsLookup(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := runCommand(t, srv, config.Config{},
		"networks", "list", "-s", "1", "-i", "5", "supernets")
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/sites/1/networks/5/supernets/"}, paths)
}

func TestNetworksListSupernets_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := runCommand(t, srv, config.Config{},
		"networks", "list", "-s", "1", "-c", "198.51.100.0/24", "supernets")
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
	assert.Contains(t, err.Error(), "no matching networks found")
}

func TestDevicesAdd_RequiresHostname(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	_, err := runCommand(t, srv, config.Config{}, "devices", "add", "-s", "1")
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
	assert.Contains(t, err.Error(), "--hostname")
}

func TestDevicesAdd_MissingSiteUsesConfigDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sites/3/devices/", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, config.Config{DefaultSite: "3"},
		"devices", "add", "-H", "gw9-nyc", "-a", "owner=netops")
	require.NoError(t, err)
	assert.Contains(t, out, "Added device gw9-nyc")
}

func TestDevicesAdd_InvalidAttribute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	_, err := runCommand(t, srv, config.Config{},
		"devices", "add", "-s", "1", "-H", "gw1", "-a", "novalue")
	require.Error(t, err)

	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "novalue", verr.Token)
}

func TestDevicesAdd_BulkFile(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "devices.txt")
	contents := "hostname:attributes:monitored\n" +
		"gw1-sfo:owner=netops:True\n" +
		"gw2-sfo:owner=dc-ops:False\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	out, err := runCommand(t, srv, config.Config{}, "devices", "add", "-s", "1", "-b", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 devices")

	var payload []map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload, 2)
	assert.Equal(t, "gw1-sfo", payload[0]["hostname"])
	assert.Equal(t, true, payload[0]["monitored"])
	assert.Equal(t, false, payload[1]["monitored"])
	assert.Equal(t, map[string]any{"owner": "netops"}, payload[0]["attributes"])
}

func TestDevicesAdd_BulkFileBadRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("a malformed bulk file must not reach the API")
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "devices.txt")
	require.NoError(t, os.WriteFile(path, []byte("hostname:attributes\nonlyone\n"), 0o600))

	_, err := runCommand(t, srv, config.Config{}, "devices", "add", "-s", "1", "-b", path)
	require.Error(t, err)

	var ferr *errs.FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, 2, ferr.Line)
}

func TestRoot_FlagParseFailureIsUsageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	// Unknown flags fail the same way a missing required option does.
	_, err := runCommand(t, srv, config.Config{}, "devices", "list", "--bogus")
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := runCommand(t, srv, config.Config{}, "-o", "xml", "sites", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
