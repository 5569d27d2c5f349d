package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/events"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/repositories"
)

type fakeEventStore struct {
	mu          sync.Mutex
	events      []models.AuditEvent
	alerts      []models.Alert
	insertCalls int
	insertErr   error
}

func (f *fakeEventStore) InsertWithAlerts(_ context.Context, evs []models.AuditEvent, alerts []models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, evs...)
	f.alerts = append(f.alerts, alerts...)
	return nil
}

func (f *fakeEventStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.AuditEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].TenantID == tenantID && f.events[i].ID == id {
			e := f.events[i]
			return &e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeEventStore) List(_ context.Context, tenantID uuid.UUID, flt repositories.EventFilter) ([]models.AuditEvent, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.AuditEvent
	for _, e := range f.events {
		if e.TenantID == tenantID {
			all = append(all, e)
		}
	}
	total := len(all)
	if flt.Offset >= total {
		return []models.AuditEvent{}, total, nil
	}
	end := min(flt.Offset+flt.Limit, total)
	return all[flt.Offset:end], total, nil
}

func (f *fakeEventStore) Stream(_ context.Context, tenantID uuid.UUID, _ repositories.EventFilter, fn func(*models.AuditEvent) error) error {
	f.mu.Lock()
	evs := append([]models.AuditEvent(nil), f.events...)
	f.mu.Unlock()
	for i := range evs {
		if evs[i].TenantID != tenantID {
			continue
		}
		if err := fn(&evs[i]); err != nil {
			return err
		}
	}
	return nil
}

type fakeAlertStore struct {
	mu     sync.Mutex
	alerts map[uuid.UUID]*models.Alert
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: make(map[uuid.UUID]*models.Alert)}
}

func (f *fakeAlertStore) Create(_ context.Context, a *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.alerts[a.ID] = &cp
	return nil
}

func (f *fakeAlertStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok || a.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAlertStore) List(_ context.Context, tenantID uuid.UUID, flt repositories.AlertFilter) ([]models.Alert, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Alert, 0)
	for _, a := range f.alerts {
		if a.TenantID != tenantID {
			continue
		}
		if flt.Resolved != nil && a.IsResolved != *flt.Resolved {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (f *fakeAlertStore) Resolve(_ context.Context, tenantID, id uuid.UUID, at time.Time) (*models.Alert, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok || a.TenantID != tenantID {
		return nil, false, repositories.ErrNotFound
	}
	changed := !a.IsResolved
	if changed {
		a.IsResolved = true
		a.ResolvedAt = &at
	}
	cp := *a
	return &cp, changed, nil
}

type fakeSummaryStore struct {
	summary  models.Summary
	lastTopN int
	calls    int
}

func (f *fakeSummaryStore) Summarize(_ context.Context, _ uuid.UUID, from, to time.Time, topN int) (*models.Summary, error) {
	f.calls++
	f.lastTopN = topN
	s := f.summary
	s.From, s.To = from, to
	return &s, nil
}

type fakeRunStore struct {
	runs map[uuid.UUID]models.ReportRun
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[uuid.UUID]models.ReportRun)}
}

func (f *fakeRunStore) Create(_ context.Context, run *models.ReportRun) error {
	f.runs[run.ID] = *run
	return nil
}

func (f *fakeRunStore) List(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]models.ReportRun, int, error) {
	out := make([]models.ReportRun, 0)
	for _, r := range f.runs {
		if r.TenantID == tenantID {
			r.Data = nil
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeRunStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.ReportRun, error) {
	r, ok := f.runs[id]
	if !ok || r.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

type fakeTenantStore struct {
	tenants map[uuid.UUID]models.Tenant
}

func newFakeTenantStore(ts ...models.Tenant) *fakeTenantStore {
	f := &fakeTenantStore{tenants: make(map[uuid.UUID]models.Tenant)}
	for _, t := range ts {
		f.tenants[t.ID] = t
	}
	return f
}

func (f *fakeTenantStore) Create(_ context.Context, t *models.Tenant) error {
	f.tenants[t.ID] = *t
	return nil
}

func (f *fakeTenantStore) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTenantStore) List(context.Context) ([]models.Tenant, error) {
	out := make([]models.Tenant, 0, len(f.tenants))
	for _, t := range f.tenants {
		out = append(out, t)
	}
	return out, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.TenantID == u.TenantID && existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.TenantID == tenantID && u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakeAPIKeyStore struct {
	keys []models.APIKey
}

func (f *fakeAPIKeyStore) Create(_ context.Context, k *models.APIKey) error {
	f.keys = append(f.keys, *k)
	return nil
}

func (f *fakeAPIKeyStore) GetActiveByHash(_ context.Context, hash string) (*models.APIKey, error) {
	for _, k := range f.keys {
		if k.KeyHash == hash && k.RevokedAt == nil {
			return &k, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakeRenderer struct {
	last models.AuditPackData
}

func (r *fakeRenderer) Render(d models.AuditPackData) ([]byte, error) {
	r.last = d
	return []byte("%PDF-fake"), nil
}

func (*fakeRenderer) ContentType() string { return models.ContentTypePDF }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, stream string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stream == events.StreamAlerts {
		p.events = append(p.events, e)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeWebhook struct {
	enabled bool
	err     error
	sent    []any
}

func (w *fakeWebhook) Enabled() bool { return w.enabled }

func (w *fakeWebhook) Send(_ context.Context, payload any) error {
	w.sent = append(w.sent, payload)
	return w.err
}

func strPtr(s string) *string { return &s }
