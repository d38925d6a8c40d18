package server

import (
	"encoding/json"
	"net/http"

	"github.com/erpbridge/go-ws-proxy/envelope"
	wserrors "github.com/erpbridge/go-ws-proxy/internal/errors"
	"github.com/erpbridge/go-ws-proxy/proxy"
	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// sessionContext loads the caller's mediation state, creating a fresh one on
// first use of a caller session.
func (s *Server) sessionContext(claims *CallerClaims) *proxy.SessionContext {
	sctx, err := s.callerSessions.Get(claims.SessionID)
	if err != nil {
		return &proxy.SessionContext{CallerSessionID: claims.SessionID}
	}
	return sctx
}

func (s *Server) storeSessionContext(sctx *proxy.SessionContext) {
	if err := s.callerSessions.Upsert(sctx.CallerSessionID, sctx); err != nil {
		s.log.Error().Err(err).Str("session", sctx.CallerSessionID).Msg("failed to persist session context")
	}
}

// SelectCompanyHandler points the caller session at a company and resets the
// period selection to the vendor default.
func (s *Server) SelectCompanyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		var req struct {
			CompanyID int `json:"companyId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		sctx := s.sessionContext(claims)
		if err := s.proxy.SelectCompany(sctx, claims.Subject, req.CompanyID); err != nil {
			if errors.Is(err, proxy.CompanyAccessDeniedErr) {
				http.Error(w, "company access denied", http.StatusForbidden)
				return
			}
			writeError(w, err)
			return
		}
		s.storeSessionContext(sctx)

		writeJSON(w, map[string]any{
			"selectedCompanyId":  sctx.SelectedCompanyID,
			"selectedPeriodCode": sctx.SelectedPeriodCode,
		})
	}
}

// SelectPeriodHandler sets the period; the vendor validates existence on the
// next substantive call.
func (s *Server) SelectPeriodHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		var req struct {
			PeriodCode int `json:"periodCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		sctx := s.sessionContext(claims)
		s.proxy.SelectPeriod(sctx, req.PeriodCode)
		s.storeSessionContext(sctx)

		writeJSON(w, map[string]any{
			"selectedCompanyId":  sctx.SelectedCompanyID,
			"selectedPeriodCode": sctx.SelectedPeriodCode,
		})
	}
}

// PeriodsHandler lists the accounting periods under the selected company.
func (s *Server) PeriodsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		sctx := s.sessionContext(claims)
		periods, err := s.proxy.Periods(r.Context(), sctx)
		if err != nil {
			writeError(w, err)
			return
		}
		s.storeSessionContext(sctx)

		writeJSON(w, map[string]any{"periods": periods})
	}
}

// CreditHandler returns the current credit balance.
func (s *Server) CreditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		sctx := s.sessionContext(claims)
		count, err := s.proxy.CreditCount(r.Context(), sctx)
		if err != nil {
			writeError(w, err)
			return
		}
		s.storeSessionContext(sctx)

		writeJSON(w, map[string]any{
			"companyId":   sctx.SelectedCompanyID,
			"creditCount": count,
		})
	}
}

// ListHandler runs a generic vendor list query named by the path parameter.
func (s *Server) ListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		var req struct {
			Projection []string          `json:"projection"`
			Filters    []envelope.Filter `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		sctx := s.sessionContext(claims)
		rows, err := s.proxy.List(r.Context(), sctx, r.PathValue("op"), req.Projection, req.Filters)
		if err != nil {
			writeError(w, err)
			return
		}
		s.storeSessionContext(sctx)

		writeJSON(w, map[string]any{"rows": rows})
	}
}

// LogoutHandler drops the vendor session and destroys the proxy's view of
// the caller session.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		sctx := s.sessionContext(claims)
		s.proxy.Logout(sctx)
		if err := s.callerSessions.Delete(claims.SessionID); err != nil {
			s.log.Error().Err(err).Str("session", claims.SessionID).Msg("failed to destroy caller session")
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders a taxonomy failure as {"error": {code, message}}. The
// message is the normalized human-readable detail only; internal URLs and
// wrap chains stay server-side.
func writeError(w http.ResponseWriter, err error) {
	code := wserrors.CodeOf(err)

	message := "upstream request failed"
	var taxonomy *wserrors.Error
	if errors.As(err, &taxonomy) {
		message = taxonomy.Message
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusForCode(code))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func statusForCode(code wserrors.Code) int {
	switch code {
	case wserrors.CodeNoCompanySelected:
		return http.StatusConflict
	case wserrors.CodeUpstreamNotFound:
		return http.StatusNotFound
	case wserrors.CodeUpstreamAuthFailed, wserrors.CodeUpstreamBadRequest, wserrors.CodeUpstreamServerError:
		return http.StatusBadGateway
	case wserrors.CodeTransportError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
