package companies_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erpbridge/go-ws-proxy/companies"
	"github.com/stretchr/testify/require"
)

func TestNewFileRepo(t *testing.T) {
	t.Run("loads the credentials snapshot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "companies.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"id": 7, "source_url": "https://ws.example.com/api/v3", "username": "ws-user",
			 "api_key": "k", "api_secret": "s", "company_code": "17"}
		]`), 0o600))

		repo, err := companies.NewFileRepo(path)
		require.NoError(t, err)

		creds, err := repo.Get(7)
		require.NoError(t, err)
		require.Equal(t, "17", creds.CompanyCode)
		require.Equal(t, "https://ws.example.com/api/v3", creds.SourceURL)

		_, err = repo.Get(8)
		require.ErrorIs(t, err, companies.ErrCompanyNotFound)
	})

	t.Run("missing file fails construction", func(t *testing.T) {
		_, err := companies.NewFileRepo(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})

	t.Run("malformed snapshot fails construction", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "companies.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

		_, err := companies.NewFileRepo(path)
		require.Error(t, err)
	})
}
