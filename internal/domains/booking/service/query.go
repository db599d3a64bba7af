package service

import (
	"context"
	"fmt"

	"hotel/infras/otel"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/repository"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Query lists bookings without enforcing anything. Every listing is ordered by check_in.
type Query interface {
	ByStatus(ctx context.Context, status string) (dto.ListBookingsResponse, error)
	ByUser(ctx context.Context, userID string) (dto.ListBookingsResponse, error)
	ByRoom(ctx context.Context, roomID string) (dto.ListBookingsResponse, error)
	// Upcoming lists pending and confirmed bookings that start after now, optionally for one user.
	Upcoming(ctx context.Context, userID string) (dto.ListBookingsResponse, error)
	// Active lists confirmed bookings whose stay includes now.
	Active(ctx context.Context) (dto.ListBookingsResponse, error)
}

type queryImpl struct {
	repo repository.Booking
	otel otel.Otel
}

func NewQuery(repo repository.Booking, otel otel.Otel) Query {
	return &queryImpl{
		repo: repo,
		otel: otel,
	}
}

func (q *queryImpl) ByStatus(ctx context.Context, status string) (res dto.ListBookingsResponse, err error) {
	ctx, scope := q.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ByStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return q.list(ctx, and(eq(model.FieldStatus, status)))
}

func (q *queryImpl) ByUser(ctx context.Context, userID string) (res dto.ListBookingsResponse, err error) {
	ctx, scope := q.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ByUser")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return q.list(ctx, and(eq(model.FieldUserID, userID)))
}

func (q *queryImpl) ByRoom(ctx context.Context, roomID string) (res dto.ListBookingsResponse, err error) {
	ctx, scope := q.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ByRoom")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return q.list(ctx, and(eq(model.FieldRoomID, roomID)))
}

func (q *queryImpl) Upcoming(ctx context.Context, userID string) (res dto.ListBookingsResponse, err error) {
	ctx, scope := q.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Upcoming")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := and(
		gDto.Filter{
			Field:    model.FieldCheckIn,
			Value:    timezone.Now(),
			Operator: gDto.FilterOperatorGreater,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    model.FieldStatus,
			Value:    model.ActiveStatuses,
			Operator: gDto.FilterOperatorIn,
			Table:    model.TableName,
		},
	)

	if userID != constant.Empty {
		filter.Filters = append(filter.Filters, eq(model.FieldUserID, userID))
	}

	return q.list(ctx, filter)
}

func (q *queryImpl) Active(ctx context.Context) (res dto.ListBookingsResponse, err error) {
	ctx, scope := q.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Active")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := timezone.Now()

	filter := and(
		gDto.Filter{
			ArgName:  "now_check_in",
			Field:    model.FieldCheckIn,
			Value:    now,
			Operator: gDto.FilterOperatorLessEq,
			Table:    model.TableName,
		},
		gDto.Filter{
			ArgName:  "now_check_out",
			Field:    model.FieldCheckOut,
			Value:    now,
			Operator: gDto.FilterOperatorGreater,
			Table:    model.TableName,
		},
		eq(model.FieldStatus, model.StatusConfirmed),
	)

	return q.list(ctx, filter)
}

func (q *queryImpl) list(ctx context.Context, filter gDto.FilterGroup) (res dto.ListBookingsResponse, err error) {
	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldCheckIn, SortDir: gDto.SortDirAsc}

	bookings, err := q.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings")

		return res, fmt.Errorf("failed to list bookings: %w", err)
	}

	res.FromModels(bookings)

	return res, nil
}

func and(filters ...any) gDto.FilterGroup {
	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}

func eq(field string, value any) gDto.Filter {
	return gDto.Filter{
		Field:    field,
		Value:    value,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	}
}
