package server_test

import (
	"testing"

	"github.com/erpbridge/go-ws-proxy/server"
	"github.com/stretchr/testify/require"
)

func TestCompanyMemberships(t *testing.T) {
	t.Run("unknown user has no access", func(t *testing.T) {
		m := server.NewCompanyMemberships()
		require.False(t, m.UserMayAccessCompany("user-1", 7))
	})

	t.Run("recorded companies grant access", func(t *testing.T) {
		m := server.NewCompanyMemberships()
		m.Record("user-1", []int{7, 9})
		require.True(t, m.UserMayAccessCompany("user-1", 7))
		require.True(t, m.UserMayAccessCompany("user-1", 9))
		require.False(t, m.UserMayAccessCompany("user-1", 11))
		require.False(t, m.UserMayAccessCompany("user-2", 7))
	})

	t.Run("recording replaces the previous list", func(t *testing.T) {
		m := server.NewCompanyMemberships()
		m.Record("user-1", []int{7})
		m.Record("user-1", []int{9})
		require.False(t, m.UserMayAccessCompany("user-1", 7))
		require.True(t, m.UserMayAccessCompany("user-1", 9))
	})
}
