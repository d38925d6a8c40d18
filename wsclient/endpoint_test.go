package wsclient_test

import (
	"testing"

	"github.com/erpbridge/go-ws-proxy/wsclient"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoint(t *testing.T) {
	t.Run("joins with exactly one slash", func(t *testing.T) {
		require.Equal(t, "https://ws.example.com/api/v3/scf",
			wsclient.ResolveEndpoint("https://ws.example.com/api/v3", wsclient.SuffixSCF))
		require.Equal(t, "https://ws.example.com/api/v3/scf",
			wsclient.ResolveEndpoint("https://ws.example.com/api/v3/", wsclient.SuffixSCF))
		require.Equal(t, "https://ws.example.com/api/v3/scf",
			wsclient.ResolveEndpoint("https://ws.example.com/api/v3///", wsclient.SuffixSCF))
	})

	t.Run("idempotent for any base with or without trailing slash", func(t *testing.T) {
		bases := []string{
			"https://ws.example.com",
			"https://ws.example.com/",
			"https://ws.example.com/api/v3",
			"https://ws.example.com/api/v3/",
		}
		suffixes := []string{wsclient.SuffixSCF, wsclient.SuffixBCS, wsclient.SuffixPER, wsclient.SuffixSIS}
		for _, base := range bases {
			for _, suffix := range suffixes {
				once := wsclient.ResolveEndpoint(base, suffix)
				require.Equal(t, once, wsclient.ResolveEndpoint(once, suffix), "base %q suffix %q", base, suffix)
			}
		}
	})

	t.Run("empty suffix normalizes the base alone", func(t *testing.T) {
		require.Equal(t, "https://ws.example.com/", wsclient.ResolveEndpoint("https://ws.example.com", ""))
		require.Equal(t, "https://ws.example.com/", wsclient.ResolveEndpoint("https://ws.example.com///", ""))
	})
}
