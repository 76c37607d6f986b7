package domain

import "time"

// ScheduleSide names which end of a flight a schedule rule applies to.
type ScheduleSide string

const (
	SideDeparture ScheduleSide = "departure"
	SideArrival   ScheduleSide = "arrival"
)

// HourBucket is the fixed clock-hour window [Start, Start+1h) a timestamp falls into.
type HourBucket struct {
	Start time.Time
}

// BucketOf truncates t to the start of its clock hour in loc. The start is
// taken back from the instant by the wall-clock minutes, so zones with
// non-hour offsets bucket correctly and the repeated hour of a DST fall-back
// yields two distinct buckets.
func BucketOf(t time.Time, loc *time.Location) HourBucket {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	intoHour := time.Duration(lt.Minute())*time.Minute +
		time.Duration(lt.Second())*time.Second +
		time.Duration(lt.Nanosecond())
	return HourBucket{Start: lt.Add(-intoHour)}
}

func (b HourBucket) End() time.Time {
	return b.Start.Add(time.Hour)
}

func (b HourBucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End())
}

// Slot is the (city, hour bucket) key that at most one flight may occupy per side.
type Slot struct {
	Side   ScheduleSide
	CityID int64
	Bucket HourBucket
}

// SlotsOf returns the departure and arrival slots a flight occupies.
func SlotsOf(f Flight, loc *time.Location) [2]Slot {
	return [2]Slot{
		{Side: SideDeparture, CityID: f.FromCityID, Bucket: BucketOf(f.DepartureTime, loc)},
		{Side: SideArrival, CityID: f.ToCityID, Bucket: BucketOf(f.ArrivalTime, loc)},
	}
}

// DayRange returns [00:00, next 00:00) of the calendar day containing t in loc.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
