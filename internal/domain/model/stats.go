//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// CountBucket is one group of a count-by query.
type CountBucket struct {
	Key   string `json:"key"   db:"key"`
	Count int    `json:"count" db:"count"`
}

// AdminStats backs the admin dashboard charts.
type AdminStats struct {
	TotalReports        int           `json:"total_reports"`
	TotalWitnessReports int           `json:"total_witness_reports"`
	ReportsByType       []CountBucket `json:"reports_by_type"`
	ReportsByDate       []CountBucket `json:"reports_by_date"`
	ReportsByStatus     []CountBucket `json:"reports_by_status"`
	UsersByRole         []CountBucket `json:"users_by_role"`
}
