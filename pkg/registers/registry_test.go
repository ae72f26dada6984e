package registers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ps-net-stats/pkg/config"
	"github.com/ps-net-stats/pkg/remote"
	"github.com/ps-net-stats/pkg/remote/remotetest"
)

func TestRegisterValidation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := New(nil, zap.New(core))

	tests := []struct {
		name    string
		d       config.ClusterDescriptor
		wantErr string
	}{
		{"valid", config.ClusterDescriptor{Endpoint: "10.0.0.1", User: "monitor"}, ""},
		{"missing endpoint", config.ClusterDescriptor{User: "monitor", Line: 4}, "missing key (endpoint)"},
		{"missing user", config.ClusterDescriptor{Endpoint: "10.0.0.2"}, "missing key (user)"},
		{"bad port", config.ClusterDescriptor{Endpoint: "10.0.0.3", User: "monitor", Port: 70000}, "invalid key (port)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.d)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 3, logs.FilterMessage("skipping cluster entry").Len())
	assert.Contains(t, (&ConfigError{Line: 4, Entry: "{}", Err: assert.AnError}).Error(), "line 4")
}

func TestRegisterAllKeepsOrder(t *testing.T) {
	r := New(nil, nil)
	n := r.RegisterAll([]config.ClusterDescriptor{
		{Endpoint: "a.example", User: "u"},
		{Endpoint: "", User: "u"},
		{Endpoint: "b.example", User: "u", Port: 2222},
		{Endpoint: "c.example", User: "u", Name: "pinned"},
	})
	require.Equal(t, 3, n)

	eps := r.Endpoints()
	require.Len(t, eps, 3)
	for i, want := range []string{"a.example", "b.example", "c.example"} {
		assert.Equal(t, want, eps[i].Target.Address)
		assert.Equal(t, i, eps[i].Index)
	}
	assert.Equal(t, 2222, eps[1].Target.Port)
	assert.Equal(t, "pinned", eps[2].ClusterName)

	// Endpoints hands out a copy
	eps[0].ClusterName = "changed"
	assert.Empty(t, r.Endpoints()[0].ClusterName)
}

func TestResolveNames(t *testing.T) {
	fake := remotetest.NewFake().
		Respond("a.example", remote.CmdClusterIdentity, "Description: lab\nName: pscale-a\n").
		Respond("b.example", remote.CmdClusterIdentity, "Description: no name here\n").
		Fail("c.example", remote.CmdClusterIdentity, &remote.ExitError{Code: 1, Stderr: "denied"})

	core, logs := observer.New(zapcore.InfoLevel)
	r := New(fake, zap.New(core))
	r.RegisterAll([]config.ClusterDescriptor{
		{Endpoint: "a.example", User: "u"},
		{Endpoint: "b.example", User: "u"},
		{Endpoint: "c.example", User: "u"},
		{Endpoint: "d.example", User: "u", Name: "static"},
	})

	r.ResolveNames(context.Background(), time.Second)

	var names []string
	for _, ep := range r.Endpoints() {
		names = append(names, ep.ClusterName)
	}
	assert.Equal(t, []string{"pscale-a", UnknownClusterName, UnknownClusterName, "static"}, names)

	// the static entry is never contacted
	for _, c := range fake.Calls() {
		assert.NotEqual(t, "d.example", c.Target.Address)
	}
	assert.Len(t, fake.Calls(), 3)
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestResolveNamesTimeout(t *testing.T) {
	fake := remotetest.NewFake().
		Respond("slow.example", remote.CmdClusterIdentity, "Name: late\n").
		Delay("slow.example", remote.CmdClusterIdentity, time.Second)

	r := New(fake, nil)
	require.NoError(t, r.Register(config.ClusterDescriptor{Endpoint: "slow.example", User: "u"}))

	start := time.Now()
	r.ResolveNames(context.Background(), 20*time.Millisecond)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, UnknownClusterName, r.Endpoints()[0].ClusterName)
}
