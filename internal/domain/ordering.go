package domain

import (
	"math"
	"time"
)

// OrderGap is the distance kept from a lone neighbor when inserting at a list edge.
const OrderGap = 1000.0

// TimestampOrder converts a wall-clock instant into a fractional millisecond key.
func TimestampOrder(now time.Time) float64 {
	return float64(now.UnixNano()) / float64(time.Millisecond)
}

// OrderBetween returns an order index that sorts between prev and next.
// A nil neighbor means the list edge on that side.
func OrderBetween(prev, next *float64, now time.Time) float64 {
	switch {
	case prev != nil && next != nil:
		return (*prev + *next) / 2
	case prev != nil:
		return *prev + OrderGap
	case next != nil:
		return *next - OrderGap
	default:
		return TimestampOrder(now)
	}
}

// SpreadBetween allocates count ascending keys inside the interval
// OrderBetween would use for a single insertion. With jitter set and more
// than one key, each key moves by a small random fraction of its slot so
// batches landing on the same point never collide. count == 1 matches
// OrderBetween exactly.
func SpreadBetween(prev, next *float64, count int, now time.Time, jitter func() float64) []float64 {
	if count <= 0 {
		return nil
	}
	var lower, upper float64
	switch {
	case prev != nil && next != nil:
		lower, upper = *prev, *next
	case prev != nil:
		lower, upper = *prev, *prev+2*OrderGap
	case next != nil:
		lower, upper = *next-2*OrderGap, *next
	default:
		base := TimestampOrder(now)
		lower, upper = base-OrderGap, base+OrderGap
	}

	slot := (upper - lower) / float64(count+1)
	if slot < minSlot(lower, upper) {
		// No usable room: step past lower so the keys stay distinct and ascending.
		slot = minSlot(lower, upper)
	}
	out := make([]float64, count)
	for i := range out {
		v := lower + slot*float64(i+1)
		if count > 1 && jitter != nil {
			v += (jitter() - 0.5) * slot * 1e-3
		}
		out[i] = v
	}
	return out
}

// HasRoomBetween reports whether count keys fit strictly between prev and
// next with room to spare. An open edge always has room.
func HasRoomBetween(prev, next *float64, count int) bool {
	if prev == nil || next == nil {
		return true
	}
	return (*next-*prev)/float64(count+1) >= minSlot(*prev, *next)
}

// RebalanceOrder returns count evenly spaced keys starting at start.
func RebalanceOrder(start float64, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = start + OrderGap*float64(i)
	}
	return out
}

// minSlot is the smallest spacing kept between allocated keys, scaled to
// their magnitude so it stays well above float64 resolution.
func minSlot(lower, upper float64) float64 {
	return math.Max(1, math.Max(math.Abs(lower), math.Abs(upper))) * 1e-12
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
