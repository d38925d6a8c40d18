package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/erpbridge/go-ws-proxy/creditbus"
	"github.com/erpbridge/go-ws-proxy/internal/config"
	"github.com/erpbridge/go-ws-proxy/proxy"
	"github.com/erpbridge/go-ws-proxy/server/callersession"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env            string // Environment (e.g., "DEV", "production")
	mux            *http.ServeMux
	routes         []string
	config         config.Config
	proxy          *proxy.Service
	bus            *creditbus.Bus
	callerSessions callersession.Repo
	memberships    *CompanyMemberships
	jwtSecret      []byte
	log            zerolog.Logger
}

func New(cfg config.Config, proxyService *proxy.Service, bus *creditbus.Bus, sessionRepo callersession.Repo, memberships *CompanyMemberships) (*Server, error) {
	if proxyService == nil {
		return nil, fmt.Errorf("[Server New] proxy service is required")
	}
	if bus == nil {
		return nil, fmt.Errorf("[Server New] credit bus is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] caller session repo is required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("[Server New] memberships checker is required")
	}

	s := &Server{
		mux:            http.NewServeMux(),
		config:         cfg,
		proxy:          proxyService,
		bus:            bus,
		callerSessions: sessionRepo,
		memberships:    memberships,
		jwtSecret:      []byte(cfg.GetJWTSecret()),
		log:            log.Logger,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s", displayMethod, path)
}
