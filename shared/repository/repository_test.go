package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/shared/model"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantErr     error
		wantStorage bool
	}{
		{
			name:    "unique violation",
			err:     &pq.Error{Code: constant.PqErrorCodeUniqueViolation},
			wantErr: ErrUniqueViolation,
		},
		{
			name:    "foreign key violation",
			err:     &pq.Error{Code: constant.PqErrorCodeFkViolation},
			wantErr: ErrForeignKeyViolation,
		},
		{
			name:    "check violation",
			err:     &pq.Error{Code: constant.PqErrorCodeCheckViolation},
			wantErr: ErrCheckViolation,
		},
		{
			name:    "exclusion violation",
			err:     &pq.Error{Code: constant.PqErrorCodeExclusionViolation},
			wantErr: ErrExclusionViolation,
		},
		{
			name:    "missing filter",
			err:     errRequiredFilter,
			wantErr: errRequiredFilter,
		},
		{
			name:        "serialization failure",
			err:         &pq.Error{Code: "40001"},
			wantStorage: true,
		},
		{
			name:        "connection loss",
			err:         sql.ErrConnDone,
			wantStorage: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)

			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.wantStorage, failure.IsStorage(got))

			if tt.wantErr != nil {
				assert.ErrorIs(t, got, tt.wantErr)
			}
		})
	}
}

func TestConstraint(t *testing.T) {
	violation := &pq.Error{Code: constant.PqErrorCodeCheckViolation, Constraint: "room_bookings_valid_interval"}

	assert.Equal(t, "room_bookings_valid_interval",
		Constraint(fmt.Errorf("failed to insert data (booking): %w", classify(violation))))
	assert.Empty(t, Constraint(errors.New("boom")))
	assert.Empty(t, Constraint(nil))
}

func TestGetColumns(t *testing.T) {
	type row struct {
		ID       string  `db:"id"`
		RoomName *string `db:"room_name" table:"rooms" column:"name"`
		Skipped  string
		model.Metadata
	}

	columns, insert := getColumns("room_bookings", reflect.TypeOf(row{}))

	assert.Equal(t, column{name: "id", table: "room_bookings"}, columns[0])
	assert.Equal(t, column{name: "name", table: "rooms", alias: "room_name"}, columns[1])
	assert.Equal(t, []string{"id", "created_at", "modified_at", "created_by", "modified_by"}, insert)
}
