package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridnfs/gridnfs/pkg/grid"
)

func TestGrantedMask(t *testing.T) {
	tests := []struct {
		name      string
		requested uint32
		perms     grid.Permissions
		want      uint32
	}{
		{
			name:      "read granted",
			requested: MaskUserRead,
			perms:     grid.Permissions{Read: true},
			want:      MaskUserRead,
		},
		{
			name:      "read denied",
			requested: MaskUserRead,
			perms:     grid.Permissions{},
			want:      0,
		},
		{
			name:      "write granted",
			requested: MaskUserWrite,
			perms:     grid.Permissions{Write: true},
			want:      MaskUserWrite,
		},
		{
			name:      "write implies read",
			requested: MaskUserRead | MaskUserWrite,
			perms:     grid.Permissions{Write: true},
			want:      MaskUserRead | MaskUserWrite,
		},
		{
			name:      "read does not imply write",
			requested: MaskUserRead | MaskUserWrite,
			perms:     grid.Permissions{Read: true},
			want:      MaskUserRead,
		},
		{
			name:      "write not requested leaves read denied",
			requested: MaskUserRead,
			perms:     grid.Permissions{Write: true},
			want:      0,
		},
		{
			name:      "execute granted",
			requested: MaskUserExecute,
			perms:     grid.Permissions{Execute: true},
			want:      MaskUserExecute,
		},
		{
			name:      "execute denied",
			requested: MaskUserExecute,
			perms:     grid.Permissions{Read: true, Write: true},
			want:      0,
		},
		{
			name:      "full mask fully granted",
			requested: MaskUserRead | MaskUserWrite | MaskUserExecute,
			perms:     grid.Permissions{Read: true, Write: true, Execute: true},
			want:      MaskUserRead | MaskUserWrite | MaskUserExecute,
		},
		{
			name:      "nothing requested",
			requested: 0,
			perms:     grid.Permissions{Read: true, Write: true, Execute: true},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grantedMask(tt.requested, tt.perms)
			assert.Equal(t, tt.want, got, "requested %#o against %+v", tt.requested, tt.perms)
		})
	}
}
