package server

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/schedule"
)

// fakeStore is an in-memory DBClient with the same not-found and duplicate
// semantics as *db.DB.
type fakeStore struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*db.Company
	admins    map[uuid.UUID]*db.AdminUser
	seq       int64

	pingErr error
	listErr error

	// countGate, when set, holds CountAdminUsers until every caller has read the count.
	countGate *sync.WaitGroup
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies: make(map[uuid.UUID]*db.Company),
		admins:    make(map[uuid.UUID]*db.AdminUser),
	}
}

var _ DBClient = (*fakeStore)(nil)

func cloneCompany(c *db.Company) *db.Company {
	out := *c
	out.Emails = slices.Clone(c.Emails)
	out.PhoneNumbers = slices.Clone(c.PhoneNumbers)
	out.Communications = slices.Clone(c.Communications)
	return &out
}

// seedCompany stores a company with the given communications in insertion order.
func (f *fakeStore) seedCompany(name, periodicity string, comms ...db.Communication) *db.Company {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := &db.Company{
		ID:                       uuid.New(),
		Name:                     name,
		NameNormalized:           db.NormalizeName(name),
		CommunicationPeriodicity: periodicity,
		CreatedAt:                time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:                time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, comm := range comms {
		f.seq++
		comm.ID = uuid.New()
		comm.CompanyID = c.ID
		comm.Seq = f.seq
		c.Communications = append(c.Communications, comm)
	}
	f.companies[c.ID] = c
	return cloneCompany(c)
}

func (f *fakeStore) sortedCompanies() []*db.Company {
	out := make([]*db.Company, 0, len(f.companies))
	for _, c := range f.companies {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *db.Company) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func (f *fakeStore) CreateCompany(_ context.Context, c *db.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	normalized := db.NormalizeName(c.Name)
	if normalized == "" {
		return db.ErrInvalid
	}
	for _, existing := range f.companies {
		if existing.NameNormalized == normalized {
			return db.ErrDuplicate
		}
	}
	c.ID = uuid.New()
	c.NameNormalized = normalized
	if c.CommunicationPeriodicity == "" {
		c.CommunicationPeriodicity = schedule.DefaultPeriodicity
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.companies[c.ID] = cloneCompany(c)
	return nil
}

func (f *fakeStore) GetCompanyByID(_ context.Context, id uuid.UUID) (*db.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return nil, nil
	}
	return cloneCompany(c), nil
}

func (f *fakeStore) ListCompanies(_ context.Context, filters db.CompanyFilters) ([]db.Company, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, 0, f.listErr
	}

	var matched []db.Company
	for _, c := range f.sortedCompanies() {
		if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, *cloneCompany(c))
	}
	total := len(matched)
	if filters.Offset >= total {
		return []db.Company{}, total, nil
	}
	matched = matched[filters.Offset:]
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (f *fakeStore) ListAllCompanies(ctx context.Context) ([]db.Company, error) {
	companies, _, err := f.ListCompanies(ctx, db.CompanyFilters{})
	return companies, err
}

func (f *fakeStore) UpdateCompany(_ context.Context, id uuid.UUID, u db.CompanyUpdate) (*db.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.companies[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if u.Name != nil {
		c.Name = *u.Name
		c.NameNormalized = db.NormalizeName(*u.Name)
	}
	if u.Location != nil {
		c.Location = *u.Location
	}
	if u.LinkedInProfile != nil {
		c.LinkedInProfile = *u.LinkedInProfile
	}
	if u.Emails != nil {
		c.Emails = u.Emails
	}
	if u.PhoneNumbers != nil {
		c.PhoneNumbers = u.PhoneNumbers
	}
	if u.Comments != nil {
		c.Comments = *u.Comments
	}
	if u.CommunicationPeriodicity != nil {
		c.CommunicationPeriodicity = *u.CommunicationPeriodicity
	}
	c.UpdatedAt = time.Now()
	return cloneCompany(c), nil
}

func (f *fakeStore) UpdatePeriodicity(_ context.Context, id uuid.UUID, periodicity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return db.ErrNotFound
	}
	c.CommunicationPeriodicity = periodicity
	return nil
}

func (f *fakeStore) DeleteCompany(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.companies[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.companies, id)
	return nil
}

func (f *fakeStore) AddCommunication(_ context.Context, companyID uuid.UUID, comm *db.Communication) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.companies[companyID]
	if !ok {
		return db.ErrNotFound
	}
	if !comm.Type.Valid() || comm.Date.IsZero() {
		return db.ErrInvalid
	}
	f.seq++
	comm.ID = uuid.New()
	comm.CompanyID = companyID
	comm.Seq = f.seq
	comm.CreatedAt = time.Now()
	c.Communications = append(c.Communications, *comm)
	return nil
}

func (f *fakeStore) ListCommunications(_ context.Context, companyID uuid.UUID) ([]db.Communication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[companyID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return slices.Clone(c.Communications), nil
}

func (f *fakeStore) CreateFirstAdminUser(_ context.Context, email, passwordHash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.admins) > 0 {
		return uuid.Nil, db.ErrAdminExists
	}
	now := time.Now()
	a := &db.AdminUser{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	f.admins[a.ID] = a
	return a.ID, nil
}

func (f *fakeStore) GetAdminUser(_ context.Context, id uuid.UUID) (*db.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (f *fakeStore) GetAdminUserByEmail(_ context.Context, email string) (*db.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CountAdminUsers(_ context.Context) (int, error) {
	f.mu.Lock()
	n := len(f.admins)
	f.mu.Unlock()
	if f.countGate != nil {
		f.countGate.Done()
		f.countGate.Wait()
	}
	return n, nil
}

func (f *fakeStore) UpdateAdminPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return db.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}
