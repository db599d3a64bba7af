package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"hotel/shared/constant"
	"hotel/shared/dto"
	"hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	modified := created.Add(26 * time.Hour)

	var got dto.Metadata
	got.FromModel(model.Metadata{
		CreatedAt:  created,
		ModifiedAt: modified,
		CreatedBy:  "u-guest",
		ModifiedBy: "system",
	})

	assert.Equal(t, dto.Metadata{
		CreatedAt:  timezone.Format(created, constant.DateFormat),
		ModifiedAt: timezone.Format(modified, constant.DateFormat),
		CreatedBy:  "u-guest",
		ModifiedBy: "system",
	}, got)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		paged bool
		want  dto.QueryParams
	}{
		{
			name:  "all parameters",
			query: "page=3&limit=25&sort_by=check_in&sort_dir=asc",
			want:  dto.QueryParams{Page: 3, Limit: 25, SortBy: "check_in", SortDir: dto.SortDirAsc},
		},
		{
			name:  "defaults when paged",
			paged: true,
			want:  dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "nothing set when not paged",
			want: dto.QueryParams{},
		},
		{
			name:  "malformed page and limit fall back",
			query: "page=two&limit=-4",
			paged: true,
			want:  dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "limit is capped",
			query: "limit=5000",
			paged: true,
			want:  dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.MaxValueLimit},
		},
		{
			name:  "unknown sort direction is dropped",
			query: "sort_by=created_at&sort_dir=sideways",
			want:  dto.QueryParams{SortBy: "created_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/bookings?"+tt.query, nil)

			var got dto.QueryParams
			got.FromRequest(req, tt.paged)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	now := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		group     dto.FilterGroup
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "empty group",
			group:     dto.FilterGroup{},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
		{
			name: "comparisons with explicit arg names",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.Filter{ArgName: "now_in", Field: "check_in", Value: now, Operator: dto.FilterOperatorLessEq, Table: "room_bookings"},
					dto.Filter{ArgName: "now_out", Field: "check_out", Value: now, Operator: dto.FilterOperatorGreater, Table: "room_bookings"},
				},
			},
			wantWhere: "(room_bookings.check_in <= :now_in AND room_bookings.check_out > :now_out)",
			wantArgs:  map[string]any{"now_in": now, "now_out": now},
		},
		{
			name: "in expands a slice",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.Filter{Field: "status", Value: []string{"pending", "confirmed"}, Operator: dto.FilterOperatorIn},
					dto.Filter{Field: "room_id", Value: "r-1", Operator: dto.FilterOperatorEq},
				},
			},
			wantWhere: "(status IN (:status_0, :status_1) AND room_id = :room_id)",
			wantArgs:  map[string]any{"status_0": "pending", "status_1": "confirmed", "room_id": "r-1"},
		},
		{
			name: "in with an empty slice matches nothing",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters:  []any{dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn}},
			},
			wantWhere: "(FALSE)",
			wantArgs:  map[string]any{},
		},
		{
			name: "nested group and unknown operator",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "user_id", Value: "u-1", Operator: dto.FilterOperatorEq},
					dto.Filter{Field: "notes", Value: "x", Operator: "like"},
					dto.FilterGroup{
						Operator: dto.FilterGroupOperatorAnd,
						Filters:  []any{dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorEq}},
					},
				},
			},
			wantWhere: "(user_id = :user_id OR (status = :status))",
			wantArgs:  map[string]any{"user_id": "u-1", "status": "pending"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.group.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
