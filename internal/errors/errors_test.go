package errors_test

import (
	"fmt"
	"testing"

	wserrors "github.com/erpbridge/go-ws-proxy/internal/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFromVendor(t *testing.T) {
	t.Run("200 is success", func(t *testing.T) {
		require.NoError(t, wserrors.FromVendor("200", "ok"))
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		err := wserrors.FromVendor("404", "no such record")
		require.Error(t, err)
		require.Equal(t, wserrors.CodeUpstreamNotFound, wserrors.CodeOf(err))
		require.Contains(t, err.Error(), "no such record")
	})

	t.Run("4xx maps to bad request", func(t *testing.T) {
		for _, code := range []string{"400", "401", "403", "422", "499"} {
			err := wserrors.FromVendor(code, "rejected")
			require.Equal(t, wserrors.CodeUpstreamBadRequest, wserrors.CodeOf(err), "code %s", code)
		}
	})

	t.Run("5xx maps to server error", func(t *testing.T) {
		for _, code := range []string{"500", "503", "599"} {
			err := wserrors.FromVendor(code, "boom")
			require.Equal(t, wserrors.CodeUpstreamServerError, wserrors.CodeOf(err), "code %s", code)
		}
	})

	t.Run("non-numeric and empty codes map to server error", func(t *testing.T) {
		for _, code := range []string{"", "OK", "20x", "-1"} {
			err := wserrors.FromVendor(code, "unclear")
			require.Equal(t, wserrors.CodeUpstreamServerError, wserrors.CodeOf(err), "code %q", code)
		}
	})

	t.Run("vendor message carried verbatim", func(t *testing.T) {
		err := wserrors.FromVendor("500", "Firma bulunamadı")
		var e *wserrors.Error
		require.ErrorAs(t, err, &e)
		require.Equal(t, "Firma bulunamadı", e.Message)
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("sees through pkg errors wrapping", func(t *testing.T) {
		err := wserrors.New(wserrors.CodeNoCompanySelected, "select a company first")
		wrapped := errors.Wrap(err, "[EnsureAuthenticated] precondition")
		require.Equal(t, wserrors.CodeNoCompanySelected, wserrors.CodeOf(wrapped))
		require.True(t, wserrors.IsCode(wrapped, wserrors.CodeNoCompanySelected))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", wserrors.New(wserrors.CodeTransportError, "dial tcp"))
		require.Equal(t, wserrors.CodeTransportError, wserrors.CodeOf(err))
	})

	t.Run("unclassified errors default to server error", func(t *testing.T) {
		require.Equal(t, wserrors.CodeUpstreamServerError, wserrors.CodeOf(errors.New("plain")))
	})
}
