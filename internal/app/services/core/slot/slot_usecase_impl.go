package slot

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"time"

	"go.uber.org/zap"
)

type slotUsecase struct {
	SlotRepository        contracts.SlotRepository
	AppointmentRepository contracts.AppointmentRepository
	Schedule              *Schedule
	Capacity              int
	Clock                 clock.Clock
	Log                   *zap.Logger
}

func NewSlotUsecase(
	slotRepository contracts.SlotRepository,
	appointmentRepository contracts.AppointmentRepository,
	internalConfig *config.InternalConfig,
	clk clock.Clock,
	logger *zap.Logger,
) (contracts.SlotUsecase, error) {
	schedule, err := NewSchedule(internalConfig.Slot)
	if err != nil {
		return nil, err
	}

	return &slotUsecase{
		SlotRepository:        slotRepository,
		AppointmentRepository: appointmentRepository,
		Schedule:              schedule,
		Capacity:              internalConfig.Slot.Capacity,
		Clock:                 clk,
		Log:                   logger,
	}, nil
}

// TryReserve grants one unit of (date, timeSlot) to appointmentID. Calling it
// again with the same appointmentID returns the existing grant.
func (uc *slotUsecase) TryReserve(ctx context.Context, date, timeSlot, appointmentID string) (*models.SlotGrant, error) {
	requestID := utils.GetRequestID(ctx)
	slotKey := utils.BuildSlotKey(date, timeSlot)
	uc.Log.Info("slotUsecase.TryReserve called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotKey, slotKey),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	if err := uc.validateSlot(date, timeSlot); err != nil {
		uc.Log.Error("slotUsecase.TryReserve invalid slot",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, slotKey),
			zap.Error(err),
		)
		return nil, err
	}

	now := uc.Clock.Now()
	err := uc.SlotRepository.EnsureBucket(ctx, date, timeSlot, uc.Capacity, now)
	if err != nil {
		uc.Log.Error("slotUsecase.TryReserve error calling SlotRepository.EnsureBucket",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, slotKey),
			zap.Error(err),
		)
		return nil, err
	}

	holder := models.SlotHolder{AppointmentID: appointmentID, GrantedAt: now}
	bucket, err := uc.SlotRepository.TryGrant(ctx, slotKey, uc.Capacity, holder, now)
	if err != nil {
		uc.Log.Error("slotUsecase.TryReserve error calling SlotRepository.TryGrant",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, slotKey),
			zap.Error(err),
		)
		return nil, err
	}

	if bucket != nil {
		uc.Log.Info("slotUsecase.TryReserve succeeded",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, slotKey),
			zap.Int(constvars.LoggingCountKey, bucket.ReservedCount),
		)
		return &models.SlotGrant{Date: date, TimeSlot: timeSlot, AppointmentID: appointmentID, GrantedAt: now}, nil
	}

	// either full or already granted to this appointment
	bucket, err = uc.SlotRepository.FindByKey(ctx, slotKey)
	if err != nil {
		uc.Log.Error("slotUsecase.TryReserve error calling SlotRepository.FindByKey",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, slotKey),
			zap.Error(err),
		)
		return nil, err
	}
	if bucket != nil {
		if existing, ok := bucket.HolderOf(appointmentID); ok {
			uc.Log.Info("slotUsecase.TryReserve returning existing grant",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingSlotKey, slotKey),
				zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			)
			return &models.SlotGrant{Date: date, TimeSlot: timeSlot, AppointmentID: appointmentID, GrantedAt: existing.GrantedAt}, nil
		}
	}

	uc.Log.Warn("slotUsecase.TryReserve capacity exhausted",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotKey, slotKey),
	)
	return nil, exceptions.ErrCapacityExhausted(nil, slotKey)
}

func (uc *slotUsecase) Release(ctx context.Context, date, timeSlot, appointmentID string) (bool, error) {
	requestID := utils.GetRequestID(ctx)
	slotKey := utils.BuildSlotKey(date, timeSlot)
	uc.Log.Info("slotUsecase.Release called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotKey, slotKey),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	released, err := uc.SlotRepository.Release(ctx, slotKey, appointmentID, uc.Clock.Now())
	if err != nil {
		uc.Log.Error("slotUsecase.Release error calling SlotRepository.Release",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, slotKey),
			zap.Error(err),
		)
		return false, err
	}

	if !released {
		uc.Log.Info("slotUsecase.Release grant already released",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, slotKey),
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		)
		return false, nil
	}

	uc.Log.Info("slotUsecase.Release succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotKey, slotKey),
	)
	return true, nil
}

func (uc *slotUsecase) ListAvailability(ctx context.Context, date string) ([]models.SlotAvailability, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("slotUsecase.ListAvailability called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotDateKey, date),
	)

	if err := utils.ValidateVar(date, "required,date_only"); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	buckets, err := uc.SlotRepository.FindByDate(ctx, date)
	if err != nil {
		uc.Log.Error("slotUsecase.ListAvailability error calling SlotRepository.FindByDate",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotDateKey, date),
			zap.Error(err),
		)
		return nil, err
	}

	reserved := make(map[string]int, len(buckets))
	for _, bucket := range buckets {
		reserved[bucket.TimeSlot] = bucket.ReservedCount
	}

	timeSlots := uc.Schedule.TimeSlots()
	availability := make([]models.SlotAvailability, 0, len(timeSlots))
	for _, timeSlot := range timeSlots {
		remaining := uc.Capacity - reserved[timeSlot]
		if remaining < 0 {
			remaining = 0
		}
		availability = append(availability, models.SlotAvailability{
			TimeSlot:    timeSlot,
			IsAvailable: remaining > 0,
			Remaining:   remaining,
			Capacity:    uc.Capacity,
		})
	}

	uc.Log.Info("slotUsecase.ListAvailability succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotDateKey, date),
		zap.Int(constvars.LoggingCountKey, len(availability)),
	)
	return availability, nil
}

// SweepOrphanGrants releases grants older than olderThan whose appointment
// was never stored or has been cancelled.
func (uc *slotUsecase) SweepOrphanGrants(ctx context.Context, olderThan time.Duration) (int, error) {
	requestID := utils.GetRequestID(ctx)
	cutoff := uc.Clock.Now().Add(-olderThan)
	uc.Log.Info("slotUsecase.SweepOrphanGrants called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Duration(constvars.LoggingOlderThanKey, olderThan),
	)

	buckets, err := uc.SlotRepository.FindWithHoldersGrantedBefore(ctx, cutoff)
	if err != nil {
		uc.Log.Error("slotUsecase.SweepOrphanGrants error calling SlotRepository.FindWithHoldersGrantedBefore",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0, err
	}

	type staleGrant struct {
		bucket models.SlotBucket
		holder models.SlotHolder
	}
	var candidates []staleGrant
	appointmentIDs := make([]string, 0)
	for _, bucket := range buckets {
		for _, holder := range bucket.Holders {
			if holder.GrantedAt.Before(cutoff) {
				candidates = append(candidates, staleGrant{bucket: bucket, holder: holder})
				appointmentIDs = append(appointmentIDs, holder.AppointmentID)
			}
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	appointments, err := uc.AppointmentRepository.FindByIDs(ctx, appointmentIDs)
	if err != nil {
		uc.Log.Error("slotUsecase.SweepOrphanGrants error calling AppointmentRepository.FindByIDs",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0, err
	}
	byID := make(map[string]models.Appointment, len(appointments))
	for _, appointment := range appointments {
		byID[appointment.ID] = appointment
	}

	released := 0
	for _, candidate := range candidates {
		appointment, exists := byID[candidate.holder.AppointmentID]
		if exists && appointment.Status != constvars.AppointmentStatusCancelled {
			continue
		}

		ok, err := uc.SlotRepository.Release(ctx, candidate.bucket.ID, candidate.holder.AppointmentID, uc.Clock.Now())
		if err != nil {
			uc.Log.Error("slotUsecase.SweepOrphanGrants error calling SlotRepository.Release",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingSlotKey, candidate.bucket.ID),
				zap.String(constvars.LoggingAppointmentIDKey, candidate.holder.AppointmentID),
				zap.Error(err),
			)
			return released, err
		}
		if !ok {
			continue
		}
		released++

		if exists {
			if err := uc.AppointmentRepository.MarkSlotReleased(ctx, appointment.ID, uc.Clock.Now()); err != nil {
				uc.Log.Warn("slotUsecase.SweepOrphanGrants error calling AppointmentRepository.MarkSlotReleased",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
					zap.Error(err),
				)
			}
		}

		uc.Log.Info("slotUsecase.SweepOrphanGrants released orphan grant",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotKey, candidate.bucket.ID),
			zap.String(constvars.LoggingAppointmentIDKey, candidate.holder.AppointmentID),
			zap.Bool("appointment_exists", exists),
		)
	}

	uc.Log.Info("slotUsecase.SweepOrphanGrants succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, released),
	)
	return released, nil
}

func (uc *slotUsecase) validateSlot(date, timeSlot string) error {
	if err := utils.ValidateVar(date, "required,date_only"); err != nil {
		return exceptions.ErrInputValidation(err)
	}
	if !uc.Schedule.Contains(timeSlot) {
		return exceptions.ErrTimeSlotNotInSchedule(nil, timeSlot)
	}
	return nil
}
