package models

import "time"

// SystemStats is the operator dashboard summary. Every count is an
// approximate snapshot taken at GeneratedAt; the constituent queries run
// concurrently and are not transactionally consistent with each other.
type SystemStats struct {
	TotalUsers       int64
	ActiveLast7Days  int64
	ActiveLast30Days int64
	NewToday         int64
	NewThisWeek      int64
	NewThisMonth     int64
	BannedUsers      int64
	GeneratedAt      time.Time
}

// UserStats is the directory status and category breakdown.
// Active + Inactive + Banned + Deleted always equals Total: the first three
// buckets are tallied from one classification scan and Inactive is derived
// by subtraction rather than queried separately.
type UserStats struct {
	Total       int64
	Active      int64
	Inactive    int64
	Banned      int64
	Deleted     int64
	ByPlan      map[string]int64
	ByRole      map[string]int64
	GeneratedAt time.Time
}
