package slot

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/utils"
	"fmt"
	"time"
)

// Schedule is the ordered list of bookable time slots in one day,
// [start, end) stepped by a fixed interval.
type Schedule struct {
	timeSlots []string
	index     map[string]struct{}
}

func NewSchedule(cfg config.AppSlot) (*Schedule, error) {
	start, err := utils.ParseTimeSlot(cfg.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid slot start time %q: %w", cfg.StartTime, err)
	}
	end, err := utils.ParseTimeSlot(cfg.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid slot end time %q: %w", cfg.EndTime, err)
	}
	if cfg.IntervalInMinutes <= 0 {
		return nil, fmt.Errorf("slot interval must be positive, got %d", cfg.IntervalInMinutes)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("slot start time %s must be before end time %s", cfg.StartTime, cfg.EndTime)
	}

	interval := time.Duration(cfg.IntervalInMinutes) * time.Minute
	schedule := &Schedule{index: make(map[string]struct{})}
	for current := start; current.Before(end); current = current.Add(interval) {
		timeSlot := current.Format(constvars.AppTimeSlotFormat)
		schedule.timeSlots = append(schedule.timeSlots, timeSlot)
		schedule.index[timeSlot] = struct{}{}
	}
	return schedule, nil
}

func (s *Schedule) TimeSlots() []string {
	out := make([]string, len(s.timeSlots))
	copy(out, s.timeSlots)
	return out
}

func (s *Schedule) Contains(timeSlot string) bool {
	_, ok := s.index[timeSlot]
	return ok
}
