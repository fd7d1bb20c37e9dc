package testutil

import (
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrDuplicateBookingID = errors.New("duplicate booking id")

type MemoryAppointmentRepository struct {
	Faults

	mu           sync.Mutex
	appointments map[string]*models.Appointment
	transitions  int
}

func NewMemoryAppointmentRepository() *MemoryAppointmentRepository {
	return &MemoryAppointmentRepository{appointments: make(map[string]*models.Appointment)}
}

func (r *MemoryAppointmentRepository) EnsureIndexes(ctx context.Context) error {
	return r.take("EnsureIndexes")
}

func (r *MemoryAppointmentRepository) Insert(ctx context.Context, appointment *models.Appointment) error {
	if err := r.take("Insert"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appointments {
		if existing.BookingID == appointment.BookingID {
			return ErrDuplicateBookingID
		}
	}
	stored := *appointment
	r.appointments[appointment.ID] = &stored
	return nil
}

func (r *MemoryAppointmentRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	if err := r.take("FindByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[appointmentID]
	if !ok {
		return nil, nil
	}
	out := *appointment
	return &out, nil
}

func (r *MemoryAppointmentRepository) FindByIDs(ctx context.Context, appointmentIDs []string) ([]models.Appointment, error) {
	if err := r.take("FindByIDs"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, id := range appointmentIDs {
		if appointment, ok := r.appointments[id]; ok {
			out = append(out, *appointment)
		}
	}
	return out, nil
}

func (r *MemoryAppointmentRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]models.Appointment, error) {
	if err := r.take("FindByUserID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, appointment := range r.appointments {
		if appointment.UserID == userID {
			out = append(out, *appointment)
		}
	}
	sortAppointments(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryAppointmentRepository) FindAll(ctx context.Context, page, pageSize int) ([]models.Appointment, int, error) {
	if err := r.take("FindAll"); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]models.Appointment, 0, len(r.appointments))
	for _, appointment := range r.appointments {
		all = append(all, *appointment)
	}
	sortAppointments(all)

	start := (page - 1) * pageSize
	if start >= len(all) {
		return []models.Appointment{}, len(all), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r *MemoryAppointmentRepository) Transition(ctx context.Context, appointmentID string, transition models.AppointmentTransition) (*models.Appointment, error) {
	if err := r.take("Transition"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[appointmentID]
	if !ok || !contains(transition.From, appointment.Status) {
		return nil, nil
	}

	at := transition.At.UTC()
	appointment.Status = transition.To
	appointment.SetUpdatedAt(at)
	if transition.PaymentStatus != "" {
		appointment.PaymentStatus = transition.PaymentStatus
	}
	if transition.PaymentID != "" {
		appointment.PaymentID = transition.PaymentID
	}
	switch transition.To {
	case constvars.AppointmentStatusConfirmed:
		appointment.ConfirmedAt = &at
	case constvars.AppointmentStatusCancelled:
		appointment.CancelledAt = &at
		appointment.CancellationReason = transition.Reason
		appointment.CancelledBy = transition.Actor
	case constvars.AppointmentStatusCompleted:
		appointment.CompletedAt = &at
		appointment.ReportObjectKey = transition.ReportKey
	}
	r.transitions++

	out := *appointment
	return &out, nil
}

func (r *MemoryAppointmentRepository) MarkSlotReleased(ctx context.Context, appointmentID string, at time.Time) error {
	if err := r.take("MarkSlotReleased"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[appointmentID]
	if !ok || appointment.SlotReleasedAt != nil {
		return nil
	}
	released := at.UTC()
	appointment.SlotReleasedAt = &released
	return nil
}

func (r *MemoryAppointmentRepository) MarkPaymentFailed(ctx context.Context, appointmentID string, at time.Time) (bool, error) {
	if err := r.take("MarkPaymentFailed"); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[appointmentID]
	if !ok || appointment.Status != constvars.AppointmentStatusPending || appointment.PaymentStatus != constvars.PaymentStatusPending {
		return false, nil
	}
	appointment.PaymentStatus = constvars.PaymentStatusFailed
	appointment.SetUpdatedAt(at)
	return true, nil
}

// Put stores appointment as is, bypassing every rule.
func (r *MemoryAppointmentRepository) Put(appointment models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[appointment.ID] = &appointment
}

// Get returns a snapshot of the stored appointment, or nil.
func (r *MemoryAppointmentRepository) Get(appointmentID string) *models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.appointments[appointmentID]
	if !ok {
		return nil
	}
	out := *appointment
	return &out
}

// Transitions counts the status changes that matched.
func (r *MemoryAppointmentRepository) Transitions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitions
}

func (r *MemoryAppointmentRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments)
}

func sortAppointments(appointments []models.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		if appointments[i].CreatedAt.Equal(appointments[j].CreatedAt) {
			return appointments[i].ID < appointments[j].ID
		}
		return appointments[i].CreatedAt.After(appointments[j].CreatedAt)
	})
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
