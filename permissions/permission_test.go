package permissions_test

import (
	"testing"

	"hotel/permissions"
	"hotel/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedTable(t *testing.T) {
	table := permissions.Get()
	require.NotNil(t, table)

	assert.True(t, table.Find("/v1/auth/login", "POST").Skip)
	assert.True(t, table.Find("/v1/bookings/availability", "GET").Skip)

	remove := table.Find("/v1/bookings/{id}", "DELETE")
	assert.True(t, remove.Allows(constant.RoleAdmin))
	assert.False(t, remove.Allows(constant.RoleManager))
	assert.False(t, remove.Allows(constant.RoleNormal))

	confirm := table.Find("/v1/bookings/{id}/confirm", "PATCH")
	assert.True(t, confirm.Allows(constant.RoleManager))
	assert.False(t, confirm.Allows(constant.RoleNormal))
}

func TestFind_UnknownRoute(t *testing.T) {
	rule := permissions.Get().Find("/v1/nowhere", "GET")

	assert.Equal(t, permissions.Rule{}, rule)
	assert.True(t, rule.Allows(""))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "valid",
			data: `{"endpoints":[{"path":"/v1/rooms/","method":"GET","permissions":[]}]}`,
		},
		{
			name:    "duplicate route",
			data:    `{"endpoints":[{"path":"/v1/rooms/","method":"GET"},{"path":"/v1/rooms/","method":"GET"}]}`,
			wantErr: "duplicate permission for GET /v1/rooms/",
		},
		{
			name:    "malformed json",
			data:    `{"endpoints":`,
			wantErr: "failed to decode permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := permissions.Parse([]byte(tt.data))

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, table)

				return
			}

			require.NoError(t, err)
			assert.Len(t, table.Endpoints, 1)
		})
	}
}
