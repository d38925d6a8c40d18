package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session scoping
	RouteSelectCompany = "/api/company/select"
	RouteSelectPeriod  = "/api/period/select"
	RouteLogout        = "/api/logout"

	// Vendor queries
	RoutePeriods = "/api/periods"
	RouteCredit  = "/api/credit"
	RouteList    = "/api/list/{op}"

	// Live updates
	RouteCreditStream = "/api/credit/stream"
)
