package domain

import "time"

type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Stats struct {
	TotalFlights      int
	TotalBookings     int
	RecentBookings    int
	TotalRevenueCents int64
}
