package service

import (
	"context"

	"hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	"hotel/shared/failure"
)

type capability string

const (
	capCreate  capability = "create"
	capUpdate  capability = "update"
	capCancel  capability = "cancel"
	capConfirm capability = "confirm"
	capDelete  capability = "delete"
)

type principal struct {
	id   string
	role string
}

func principalFrom(ctx context.Context) principal {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return principal{id: id, role: role}
}

// authorize checks a mutation against the caller's role:
//
//   - system (internal API key) and admin may do anything
//   - manager may do anything but delete
//   - normal users may create pending bookings for themselves and update or cancel their own
//
// Anyone else is refused.
func (p principal) authorize(action capability, booking model.Booking) error {
	switch p.role {
	case constant.ContextSystem, constant.RoleAdmin:
		return nil
	case constant.RoleManager:
		if action != capDelete {
			return nil
		}
	case constant.RoleNormal:
		switch action {
		case capCreate:
			ownBooking := booking.UserID == nil || *booking.UserID == p.id
			if ownBooking && booking.Status == model.StatusPending {
				return nil
			}
		case capUpdate, capCancel:
			if booking.OwnedBy(p.id) {
				return nil
			}
		}
	}

	return failure.ResourceRestrictedError
}
