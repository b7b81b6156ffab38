package models

// Resource identifies a dashboard data type served by the store
type Resource string

const (
	ResourceOrders   Resource = "orders"
	ResourceUsers    Resource = "users"
	ResourceRiders   Resource = "riders"
	ResourceSettings Resource = "settings"
)

// Order represents a customer order shown on the dashboard
type Order struct {
	ID           int     `json:"id"`
	CustomerName string  `json:"customerName"`
	OrderNumber  string  `json:"orderNumber"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
}

// CustomerAccount represents an end-customer account record.
// Distinct from DirectoryUser, which holds login credentials.
type CustomerAccount struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	JoinDate string `json:"joinDate"`
}

// Rider represents a delivery rider record
type Rider struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Status          string  `json:"status"`
	Rating          float64 `json:"rating"`
	TotalDeliveries int     `json:"totalDeliveries"`
}

// Settings holds the admin-only site configuration
type Settings struct {
	SiteName         string `json:"siteName"`
	Theme            string `json:"theme"`
	Version          string `json:"version"`
	MaintenanceMode  bool   `json:"maintenanceMode"`
	MaxLoginAttempts int    `json:"maxLoginAttempts"`
	SessionTimeout   int    `json:"sessionTimeout"`
}

// DashboardStats holds aggregate figures computed from the store
type DashboardStats struct {
	TotalOrders   int     `json:"totalOrders"`
	TotalUsers    int     `json:"totalUsers"`
	TotalRiders   int     `json:"totalRiders"`
	PendingOrders int     `json:"pendingOrders"`
	ActiveRiders  int     `json:"activeRiders"`
	TotalRevenue  float64 `json:"totalRevenue"`
}
