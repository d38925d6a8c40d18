package companyrepofakes

import (
	"sync"

	"github.com/erpbridge/go-ws-proxy/companies"
)

var _ companies.Repo = (*FakeCompanyRepo)(nil)

type FakeCompanyRepo struct {
	companies map[int]*companies.Credentials
	lock      sync.RWMutex
}

func NewFakeCompanyRepo() *FakeCompanyRepo {
	return &FakeCompanyRepo{
		companies: make(map[int]*companies.Credentials),
	}
}

func (cr *FakeCompanyRepo) Upsert(creds *companies.Credentials) {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	cr.companies[creds.ID] = creds
}

func (cr *FakeCompanyRepo) Get(companyID int) (*companies.Credentials, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	creds, ok := cr.companies[companyID]
	if !ok {
		return nil, companies.ErrCompanyNotFound
	}
	return creds, nil
}
