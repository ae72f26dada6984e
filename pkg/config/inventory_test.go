package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInventory(t *testing.T) {
	data := []byte(`# clusters scraped by the exporter
- cluster:
    endpoint: 10.0.0.1
    user: monitor
- cluster:
    endpoint: pscale-b.example.com
    user: root
    port: 2222
    name: pscale-b
- cluster:
    user: nobody
- backup: {host: tape}
- just a string
`)
	inv, err := ParseInventory(data)
	require.NoError(t, err)

	require.Len(t, inv.Clusters, 3)
	assert.Equal(t, ClusterDescriptor{Endpoint: "10.0.0.1", User: "monitor", Line: 2}, inv.Clusters[0])
	assert.Equal(t, ClusterDescriptor{Endpoint: "pscale-b.example.com", User: "root", Port: 2222, Name: "pscale-b", Line: 5}, inv.Clusters[1])
	assert.Equal(t, "nobody", inv.Clusters[2].User)

	require.Len(t, inv.Unknown, 2)
	assert.Equal(t, 12, inv.Unknown[0].Line)
	assert.Contains(t, inv.Unknown[0].Text, "backup")
	assert.Equal(t, "just a string", inv.Unknown[1].Text)
}

func TestParseInventoryErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrInventoryRead},
		{"comments only", "# nothing\n", ErrInventoryRead},
		{"null", "~\n", ErrInventoryRead},
		{"not yaml", "- cluster: [\n", ErrInventoryRead},
		{"mapping root", "cluster:\n  endpoint: a\n", ErrInventoryParse},
		{"scalar root", "clusters\n", ErrInventoryParse},
		{"bad field type", "- cluster:\n    endpoint: a\n    user: b\n    port: [1]\n", ErrInventoryParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInventory([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseInventoryClusterNotMapping(t *testing.T) {
	inv, err := ParseInventory([]byte("- cluster: 10.0.0.1\n"))
	require.NoError(t, err)
	require.Len(t, inv.Clusters, 1)
	assert.EqualError(t, inv.Clusters[0].Validate(), "missing key (endpoint)")
}

func TestLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- cluster: {endpoint: a, user: b}\n"), 0o600))

	inv, err := LoadInventory(path)
	require.NoError(t, err)
	require.Len(t, inv.Clusters, 1)
	assert.NoError(t, inv.Clusters[0].Validate())

	_, err = LoadInventory(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInventoryRead)
}

func TestClusterDescriptorValidate(t *testing.T) {
	tests := []struct {
		name string
		d    ClusterDescriptor
		want string
	}{
		{"ok", ClusterDescriptor{Endpoint: "a", User: "b"}, ""},
		{"no endpoint", ClusterDescriptor{User: "b"}, "missing key (endpoint)"},
		{"no user", ClusterDescriptor{Endpoint: "a"}, "missing key (user)"},
		{"port range", ClusterDescriptor{Endpoint: "a", User: "b", Port: 65536}, "invalid key (port): failed max=65535"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestClusterDescriptorString(t *testing.T) {
	assert.Equal(t, `{endpoint: "a", user: ""}`, ClusterDescriptor{Endpoint: "a"}.String())
	assert.Equal(t, `{endpoint: "a", user: "b", port: 22, name: "n"}`,
		ClusterDescriptor{Endpoint: "a", User: "b", Port: 22, Name: "n"}.String())
}
