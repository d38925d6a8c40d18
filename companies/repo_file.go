package companies

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// FileRepo serves a read-only snapshot of the company registry loaded from a
// JSON file at startup. The registry proper is owned by the back-office CRUD
// layer; this repo is the deployment boundary for installations where that
// layer exports credentials to disk.
type FileRepo struct {
	companies map[int]*Credentials
}

var _ Repo = (*FileRepo)(nil)

// NewFileRepo loads the credentials snapshot from path.
func NewFileRepo(path string) (*FileRepo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[NewFileRepo] read %s", path)
	}

	var records []*Credentials
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrapf(err, "[NewFileRepo] decode %s", path)
	}

	byID := make(map[int]*Credentials, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	return &FileRepo{companies: byID}, nil
}

func (fr *FileRepo) Get(companyID int) (*Credentials, error) {
	creds, ok := fr.companies[companyID]
	if !ok {
		return nil, ErrCompanyNotFound
	}
	return creds, nil
}
