package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"randevulu/internal/metrics"
	"randevulu/internal/validate"

	"go.uber.org/zap"
)

const (
	firstSlotHour = 9
	lastSlotHour  = 18
)

// Slots is the hourly grid offered every day, "09:00" through "18:00".
func Slots() []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
	}
	return slots
}

func slotHour(slot string) (int, bool) {
	hourText, minutes, found := strings.Cut(strings.TrimSpace(slot), ":")
	if !found || minutes != "00" || len(hourText) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < firstSlotHour || hour > lastSlotHour {
		return 0, false
	}
	return hour, true
}

// Availability returns the grid minus the hours in which any appointment
// starts on date, whatever its status. Storage errors are logged and the full grid is
// returned.
func (s *Service) Availability(ctx context.Context, tenantID, date string) ([]string, error) {
	id, idErr := validate.UUID("tenant_id", tenantID)
	day, dateErr := validate.Date("date", date, s.loc)
	if idErr != nil || dateErr != nil {
		fields := append(fieldErrors(idErr), fieldErrors(dateErr)...)
		return nil, &validate.Error{Fields: fields}
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)
	starts, err := s.store.ListAppointmentStarts(ctx, id, from, to)
	if err != nil {
		metrics.AvailabilityFailOpenTotal.Inc()
		s.logger.Warn("availability lookup failed, returning full grid",
			zap.String("tenant_id", id),
			zap.String("date", date),
			zap.Error(err))
		return Slots(), nil
	}

	booked := make(map[string]bool, len(starts))
	for _, start := range starts {
		booked[fmt.Sprintf("%02d:00", start.In(s.loc).Hour())] = true
	}
	available := make([]string, 0, len(Slots()))
	for _, slot := range Slots() {
		if !booked[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}
