package proxy

import "errors"

var (
	CompanyAccessDeniedErr = errors.New("user may not access company")
)
