package dto

import "time"

// AdminDashboardResponse aggregates the figures shown on the staff dashboard.
type AdminDashboardResponse struct {
	ActiveGroupsCount   int64             `json:"active_groups_count"`
	NaborGroupsCount    int64             `json:"nabor_groups_count"`
	ActiveStudentsCount int64             `json:"active_students_count"`
	DebtorsCount        int64             `json:"debtors_count"`
	MonthlyRevenue      int64             `json:"monthly_revenue"`
	TodaysGroups        []GroupSummary    `json:"todays_groups"`
	PaymentsDueToday    []StudentResponse `json:"payments_due_today"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// CabinetDashboardResponse is the landing payload of the student cabinet.
type CabinetDashboardResponse struct {
	Student         StudentResponse      `json:"student"`
	Group           *GroupSummary        `json:"group"`
	Payments        []PaymentResponse    `json:"payments"`
	TotalPaid       int64                `json:"total_paid"`
	Attendance      []AttendanceResponse `json:"attendance"`
	AttendanceStats AttendanceStats      `json:"attendance_stats"`
}
