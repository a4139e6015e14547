package scheduling

import (
	"slices"
	"testing"
	"time"

	"mentorhub/models"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time {
	return time.Date(2026, 4, 1, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"disjoint", at(9, 0), at(10, 0), at(11, 0), at(12, 0), false},
		{"touching boundaries do not overlap", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"touching reversed", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"partial overlap", at(9, 0), at(10, 0), at(9, 30), at(10, 30), true},
		{"containment", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestSplitIntoHourlyBlocksTruncatesFinalBlock(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(11, 30)}

	blocks := slices.Collect(SplitIntoHourlyBlocks(slot, nil))

	assert.Len(t, blocks, 3)
	assert.Equal(t, at(9, 0), blocks[0].Start)
	assert.Equal(t, at(10, 0), blocks[0].End)
	assert.Equal(t, at(11, 0), blocks[2].Start)
	assert.Equal(t, at(11, 30), blocks[2].End)
	for _, b := range blocks {
		assert.False(t, b.Reserved)
	}
}

func TestSplitIntoHourlyBlocksMarksReserved(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(12, 0)}
	reservations := []models.Reservation{
		{ID: "r1", BookedStartTime: at(9, 30), BookedEndTime: at(10, 30)},
	}

	blocks := slices.Collect(SplitIntoHourlyBlocks(slot, reservations))

	assert.Len(t, blocks, 3)
	assert.True(t, blocks[0].Reserved)
	assert.Equal(t, "r1", blocks[0].ReservationID)
	assert.True(t, blocks[1].Reserved)
	assert.False(t, blocks[2].Reserved)
}

func TestSplitIntoHourlyBlocksRestartable(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(12, 0)}
	seq := SplitIntoHourlyBlocks(slot, nil)

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, first, second)
}

func TestEnumerateBookableWindowsOrdering(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(12, 0)}

	windows := slices.Collect(EnumerateBookableWindows(slot, nil, 1, 0))

	// start hour ascending, then duration ascending
	want := []struct {
		start time.Time
		hours int
	}{
		{at(9, 0), 1}, {at(9, 0), 2}, {at(9, 0), 3},
		{at(10, 0), 1}, {at(10, 0), 2},
		{at(11, 0), 1},
	}
	assert.Len(t, windows, len(want))
	for i, w := range want {
		assert.Equal(t, w.start, windows[i].Start, "window %d start", i)
		assert.Equal(t, w.hours, windows[i].Hours, "window %d hours", i)
		assert.Equal(t, windows[i].Start.Add(time.Duration(w.hours)*time.Hour), windows[i].End)
	}
	assert.Equal(t, "09:00 - 10:00 (1h)", windows[0].Label)
}

func TestEnumerateBookableWindowsBlocking(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(12, 0)}
	confirmed := []models.Reservation{
		{Status: models.StatusConfirmed, BookedStartTime: at(10, 0), BookedEndTime: at(11, 0)},
	}

	windows := slices.Collect(EnumerateBookableWindows(slot, confirmed, 1, 0))

	assert.Len(t, windows, 2)
	assert.Equal(t, at(9, 0), windows[0].Start)
	assert.Equal(t, 1, windows[0].Hours)
	assert.Equal(t, at(11, 0), windows[1].Start)
	assert.Equal(t, 1, windows[1].Hours)
}

func TestEnumerateBookableWindowsIgnoresNonBlockingStatuses(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(11, 0)}
	reservations := []models.Reservation{
		{Status: models.StatusApproved, BookedStartTime: at(9, 0), BookedEndTime: at(10, 0)},
		{Status: models.StatusRejected, BookedStartTime: at(10, 0), BookedEndTime: at(11, 0)},
		{Status: models.StatusCanceled, BookedStartTime: at(9, 0), BookedEndTime: at(11, 0)},
	}

	windows := slices.Collect(EnumerateBookableWindows(slot, reservations, 1, 0))

	// Only PENDING_APPROVAL and CONFIRMED block window enumeration.
	assert.Len(t, windows, 3)
}

func TestEnumerateBookableWindowsDurationBounds(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(13, 0)}

	windows := slices.Collect(EnumerateBookableWindows(slot, nil, 2, 3))

	for _, w := range windows {
		assert.GreaterOrEqual(t, w.Hours, 2)
		assert.LessOrEqual(t, w.Hours, 3)
		assert.False(t, w.End.After(slot.EndTime))
	}
	// offsets 0..3, durations 2..3 that fit: (9,2)(9,3)(10,2)(10,3)(11,2)
	assert.Len(t, windows, 5)
}

func TestEnumerateBookableWindowsNeverCollide(t *testing.T) {
	slot := models.LessonSlot{StartTime: at(9, 0), EndTime: at(17, 0)}
	blocking := []models.Reservation{
		{Status: models.StatusConfirmed, BookedStartTime: at(10, 0), BookedEndTime: at(11, 30)},
		{Status: models.StatusPendingApproval, BookedStartTime: at(14, 0), BookedEndTime: at(15, 0)},
	}

	for w := range EnumerateBookableWindows(slot, blocking, 1, 0) {
		assert.False(t, w.Start.Before(slot.StartTime))
		assert.False(t, w.End.After(slot.EndTime))
		for _, res := range blocking {
			assert.False(t, Overlaps(w.Start, w.End, res.BookedStartTime, res.BookedEndTime),
				"window %s collides with reservation %s-%s", w.Label, res.BookedStartTime, res.BookedEndTime)
		}
	}
}
