package server

import "net/http"

func (s *Server) initRoutes() {
	// Session scoping
	s.RegisterRouteHandler("POST "+RouteSelectCompany, s.apiHandler(s.SelectCompanyHandler()))
	s.RegisterRouteHandler("POST "+RouteSelectPeriod, s.apiHandler(s.SelectPeriodHandler()))
	s.RegisterRouteHandler("POST "+RouteLogout, s.apiHandler(s.LogoutHandler()))

	// Vendor queries
	s.RegisterRouteHandler("GET "+RoutePeriods, s.apiHandler(s.PeriodsHandler()))
	s.RegisterRouteHandler("GET "+RouteCredit, s.apiHandler(s.CreditHandler()))
	s.RegisterRouteHandler("POST "+RouteList, s.apiHandler(s.ListHandler()))

	// Live updates
	s.RegisterRouteHandler("GET "+RouteCreditStream, s.apiHandler(s.CreditStreamHandler()))
}

// apiHandler wraps a handler with the standard API middleware chain.
func (s *Server) apiHandler(h http.HandlerFunc) http.Handler {
	return ChainMiddleware(h, s.RequestIDMiddleware, s.LoggingMiddleware, s.RecoverMiddleware, s.RequireAuth())
}
