package taskrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		current    string
		wantErr    bool
	}{
		{name: "no constraint", constraint: "", current: "0.1.0"},
		{name: "satisfied", constraint: ">= 1.2", current: "1.4.0"},
		{name: "too old", constraint: ">= 1.2", current: "1.1.9", wantErr: true},
		{name: "caret", constraint: "^1.0", current: "2.0.0", wantErr: true},
		{name: "dev build", constraint: ">= 9.0", current: "dev"},
		{name: "bad constraint", constraint: "soon", current: "1.0.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkVersion(tt.constraint, tt.current)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
