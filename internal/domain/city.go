package domain

import "time"

// City is a reference record for a departure or arrival location.
// Code is the provincial plate code used by the seed ("06" for Ankara).
type City struct {
	ID        int64
	Code      string
	Name      string
	CreatedAt time.Time
}
