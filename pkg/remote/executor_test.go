package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr string
	}{
		{name: "ok", target: Target{Address: "cluster1.example.com", User: "root"}},
		{name: "empty address", target: Target{User: "root"}, wantErr: "endpoint is empty"},
		{name: "empty user", target: Target{Address: "10.0.0.1"}, wantErr: "user is empty"},
		{name: "option injection", target: Target{Address: "-oProxyCommand=evil", User: "root"}, wantErr: "must not start with '-'"},
		{name: "whitespace", target: Target{Address: "10.0.0.1", User: "root; rm"}, wantErr: "whitespace"},
		{name: "second at sign", target: Target{Address: "a@b", User: "root"}, wantErr: "'@'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTargetAddressing(t *testing.T) {
	tg := Target{Address: "10.1.2.3", User: "svc_prom"}
	assert.Equal(t, "svc_prom@10.1.2.3", tg.Destination())
	assert.Equal(t, "10.1.2.3:22", tg.HostPort(22))

	tg.Port = 2222
	assert.Equal(t, "10.1.2.3:2222", tg.HostPort(22))

	v6 := Target{Address: "fd00::1", User: "root"}
	assert.Equal(t, "[fd00::1]:22", v6.HostPort(22))
}

func TestExitErrorMessage(t *testing.T) {
	err := &ExitError{Code: 255, Stderr: "ssh: connect to host x: Connection refused\nmore\n"}
	assert.Equal(t, "remote command exited with status 255: ssh: connect to host x: Connection refused", err.Error())
	assert.Equal(t, "remote command exited with status 1", (&ExitError{Code: 1}).Error())
}
