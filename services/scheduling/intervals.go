package scheduling

import (
	"fmt"
	"iter"
	"time"

	"mentorhub/models"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// SplitIntoHourlyBlocks yields the slot's window in 1-hour steps, the final
// block truncated to the slot's end. A block is marked reserved when it
// overlaps any reservation in the input set. The sequence is restartable.
func SplitIntoHourlyBlocks(slot models.LessonSlot, reservations []models.Reservation) iter.Seq[models.HourlyBlock] {
	return func(yield func(models.HourlyBlock) bool) {
		for start := slot.StartTime; start.Before(slot.EndTime); start = start.Add(time.Hour) {
			end := start.Add(time.Hour)
			if end.After(slot.EndTime) {
				end = slot.EndTime
			}
			block := models.HourlyBlock{Start: start, End: end}
			for _, res := range reservations {
				if Overlaps(start, end, res.BookedStartTime, res.BookedEndTime) {
					block.Reserved = true
					block.ReservationID = res.ID
					break
				}
			}
			if !yield(block) {
				return
			}
		}
	}
}

// EnumerateBookableWindows yields every candidate window a student could
// still request: for each integer start-hour offset within the slot, every
// duration from minHours up to maxHours (or the full slot length when
// maxHours is 0) that fits the slot and does not collide with a reservation
// in PENDING_APPROVAL or CONFIRMED. Windows are emitted by start hour
// ascending, then duration ascending; callers rely on that ordering.
func EnumerateBookableWindows(slot models.LessonSlot, reservations []models.Reservation, minHours, maxHours int) iter.Seq[models.BookableWindow] {
	totalHours := slot.Hours()
	if minHours < 1 {
		minHours = 1
	}
	effectiveMax := maxHours
	if effectiveMax <= 0 || effectiveMax > totalHours {
		effectiveMax = totalHours
	}

	var blocking []models.Reservation
	for _, res := range reservations {
		if res.Status == models.StatusPendingApproval || res.Status == models.StatusConfirmed {
			blocking = append(blocking, res)
		}
	}

	return func(yield func(models.BookableWindow) bool) {
		for offset := 0; offset < totalHours; offset++ {
			start := slot.StartTime.Add(time.Duration(offset) * time.Hour)
			for hours := minHours; hours <= effectiveMax; hours++ {
				end := start.Add(time.Duration(hours) * time.Hour)
				if end.After(slot.EndTime) {
					break
				}
				if overlapsAny(start, end, blocking) {
					continue
				}
				window := models.BookableWindow{
					Start: start,
					End:   end,
					Hours: hours,
					Label: windowLabel(start, end, hours),
				}
				if !yield(window) {
					return
				}
			}
		}
	}
}

func overlapsAny(start, end time.Time, reservations []models.Reservation) bool {
	for _, res := range reservations {
		if Overlaps(start, end, res.BookedStartTime, res.BookedEndTime) {
			return true
		}
	}
	return false
}

func windowLabel(start, end time.Time, hours int) string {
	return fmt.Sprintf("%s - %s (%dh)", start.UTC().Format("15:04"), end.UTC().Format("15:04"), hours)
}
