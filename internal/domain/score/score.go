// Package score holds the local high-score table rules.
// This package is PURE and must NOT import any infrastructure packages.
package score

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// MaxEntries is how many runs the scoreboard retains.
const MaxEntries = 10

// Entry is one completed run.
type Entry struct {
	Time      int    `json:"time"` // elapsed seconds
	Date      string `json:"date"` // YYYY-MM-DD
	Rooms     int    `json:"rooms"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// NewEntry builds the entry for a run finished at now.
func NewEntry(elapsedSeconds, rooms int, now time.Time) Entry {
	return Entry{
		Time:      elapsedSeconds,
		Date:      now.UTC().Format("2006-01-02"),
		Rooms:     rooms,
		Timestamp: now.UnixMilli(),
	}
}

// CreatedAt returns the entry's creation time.
func (e Entry) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Insert adds e, keeps the board sorted fastest first and trims it to
// MaxEntries. Equal times keep their insertion order.
func Insert(board []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(board)+1)
	out = append(out, board...)
	out = append(out, e)
	Sort(out)
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// Sort orders a board ascending by time.
func Sort(board []Entry) {
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Time < board[j].Time
	})
}

// Best returns the fastest entry.
func Best(board []Entry) (Entry, bool) {
	if len(board) == 0 {
		return Entry{}, false
	}
	best := board[0]
	for _, e := range board[1:] {
		if e.Time < best.Time {
			best = e
		}
	}
	return best, true
}

// Average returns the mean time in whole seconds, rounded.
func Average(board []Entry) (int, bool) {
	if len(board) == 0 {
		return 0, false
	}
	total := 0
	for _, e := range board {
		total += e.Time
	}
	return int(math.Round(float64(total) / float64(len(board)))), true
}

// FormatTime renders seconds as mm:ss.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// RankLabel renders a 1-based rank, with medals for the podium.
func RankLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇 " + humanize.Ordinal(rank)
	case 2:
		return "🥈 " + humanize.Ordinal(rank)
	case 3:
		return "🥉 " + humanize.Ordinal(rank)
	default:
		return fmt.Sprintf("#%d", rank)
	}
}
