package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClusterName(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"typical", "Description: lab cluster\nName: pscale-lab\nContact Info\n", "pscale-lab", true},
		{"indented", "   Name:   pscale-01  \n", "pscale-01", true},
		{"first wins", "Name: a\nName: b\n", "a", true},
		{"other keys only", "Description: Name: nope\nLogon Message\n", "", false},
		{"empty value", "Name:\n", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseClusterName(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
