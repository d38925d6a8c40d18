// Package envelope builds the vendor's tagged request bodies. Every vendor
// operation is a JSON object keyed by the operation name:
//
//	{ "<operation>": { session_id, firma_kodu, donem_kodu, filters, params } }
//
// Construction is pure: no I/O, and the only failure mode is malformed input,
// surfaced as a configuration_error.
package envelope

import (
	"encoding/json"

	wserrors "github.com/erpbridge/go-ws-proxy/internal/errors"
)

// Operator is a vendor filter comparison operator.
type Operator string

const (
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpNot          Operator = "!"
	OpEqual        Operator = "="
	OpIn           Operator = "IN"
	OpNotIn        Operator = "NOT IN"
)

var validOperators = map[Operator]struct{}{
	OpLess: {}, OpGreater: {}, OpLessEqual: {}, OpGreaterEqual: {},
	OpNot: {}, OpEqual: {}, OpIn: {}, OpNotIn: {},
}

// Valid reports whether the operator is one the vendor accepts.
func (o Operator) Valid() bool {
	_, ok := validOperators[o]
	return ok
}

// Filter is a single predicate in a vendor list query.
type Filter struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Vendor operation names for the fixed request families. List operations are
// named by the caller (e.g. "scf_siparis_listele").
const (
	opLogin       = "login"
	opPeriods     = "donem_listesi"
	opCreditCount = "kontor_sorgula"
)

// tag wraps a body under its operation name, producing the vendor wire shape.
func tag(op string, body any) ([]byte, error) {
	return json.Marshal(map[string]any{op: body})
}

// Login authenticates against the vendor's sis sub-API.
type Login struct {
	Username           string         `json:"username"`
	Password           string         `json:"password"`
	DisconnectSameUser bool           `json:"disconnect_same_user"`
	Params             map[string]any `json:"params,omitempty"`
}

// NewLogin builds a login envelope. disconnectSameUser forces the vendor to
// drop a concurrent session held by the same user.
func NewLogin(username, secret string, params map[string]any, disconnectSameUser bool) Login {
	return Login{
		Username:           username,
		Password:           secret,
		DisconnectSameUser: disconnectSameUser,
		Params:             params,
	}
}

func (l Login) MarshalJSON() ([]byte, error) {
	type body Login
	return tag(opLogin, body(l))
}

// GetPeriods lists the accounting periods available under a company.
type GetPeriods struct {
	SessionID   string         `json:"session_id"`
	CompanyCode string         `json:"firma_kodu"`
	Params      map[string]any `json:"params,omitempty"`
}

// NewGetPeriods builds a period-listing envelope.
func NewGetPeriods(sessionToken, companyCode string, params map[string]any) GetPeriods {
	return GetPeriods{SessionID: sessionToken, CompanyCode: companyCode, Params: params}
}

func (g GetPeriods) MarshalJSON() ([]byte, error) {
	type body GetPeriods
	return tag(opPeriods, body(g))
}

// GetCreditCount queries the remaining credit balance for the session.
type GetCreditCount struct {
	SessionID string         `json:"session_id"`
	Params    map[string]any `json:"params,omitempty"`
}

// NewGetCreditCount builds a credit-count envelope.
func NewGetCreditCount(sessionToken string, params map[string]any) GetCreditCount {
	return GetCreditCount{SessionID: sessionToken, Params: params}
}

func (g GetCreditCount) MarshalJSON() ([]byte, error) {
	type body GetCreditCount
	return tag(opCreditCount, body(g))
}

// List is the generic shape shared by every vendor "list X" call (orders,
// stocks, invoices, ...), parameterized by the operation name, the projected
// columns, and a filter list.
type List struct {
	op          string
	SessionID   string   `json:"session_id"`
	CompanyCode string   `json:"firma_kodu"`
	PeriodCode  int      `json:"donem_kodu"`
	Projection  []string `json:"selectedcolumns"`
	Filters     []Filter `json:"filters,omitempty"`
}

// NewList builds a list envelope. The projection must name at least one
// column and every filter operator must be one the vendor accepts; anything
// else is a programmer error, not a user-facing failure.
func NewList(op, sessionToken, companyCode string, periodCode int, projection []string, filters []Filter) (List, error) {
	if op == "" {
		return List{}, wserrors.New(wserrors.CodeConfigurationError, "list operation name is required")
	}
	if len(projection) == 0 {
		return List{}, wserrors.Newf(wserrors.CodeConfigurationError, "list %q requires at least one projected column", op)
	}
	for _, f := range filters {
		if !f.Operator.Valid() {
			return List{}, wserrors.Newf(wserrors.CodeConfigurationError, "list %q has invalid filter operator %q", op, f.Operator)
		}
	}
	return List{
		op:          op,
		SessionID:   sessionToken,
		CompanyCode: companyCode,
		PeriodCode:  periodCode,
		Projection:  projection,
		Filters:     filters,
	}, nil
}

// Operation returns the vendor operation name this envelope is tagged with.
func (l List) Operation() string { return l.op }

func (l List) MarshalJSON() ([]byte, error) {
	type body List
	return tag(l.op, body(l))
}
