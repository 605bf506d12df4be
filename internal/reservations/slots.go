package reservations

import "fmt"

const (
	firstSlotHour = 9
	lastSlotHour  = 18
)

// SlotLabels returns the fixed daily grid "09:00" .. "18:00", one entry per hour.
func SlotLabels() []string {
	labels := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		labels = append(labels, fmt.Sprintf("%02d:00", h))
	}
	return labels
}

// ComputeSlots marks each grid label unavailable when some reservation holds
// exactly that time. Reservations with labels outside the grid are ignored.
func ComputeSlots(existing []Reservation) []TimeSlot {
	taken := make(map[string]bool, len(existing))
	for _, r := range existing {
		taken[r.Time] = true
	}

	labels := SlotLabels()
	out := make([]TimeSlot, 0, len(labels))
	for _, l := range labels {
		out = append(out, TimeSlot{Time: l, IsAvailable: !taken[l]})
	}
	return out
}
