package wsclient

import "strings"

// Sub-API suffixes of the vendor web service. Each company record carries a
// single base source URL; the per-feature endpoint is the base plus one of
// these.
const (
	SuffixSCF = "scf" // commerce: orders, stocks, invoices
	SuffixBCS = "bcs" // banking
	SuffixPER = "per" // personnel
	SuffixSIS = "sis" // system: login, periods, credit
)

// ResolveEndpoint joins a company base source URL with a sub-API suffix,
// guaranteeing exactly one slash between them. Resolving an already-resolved
// URL with the same suffix yields the same result.
func ResolveEndpoint(base, suffix string) string {
	resolved := strings.TrimRight(base, "/")
	if suffix == "" {
		return resolved + "/"
	}
	if strings.HasSuffix(resolved, "/"+suffix) {
		return resolved
	}
	return resolved + "/" + suffix
}
