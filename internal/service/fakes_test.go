package service

import (
	"context"
	"time"

	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repositories shared by the service tests. They honor the repo
// contracts (gorm.ErrRecordNotFound on misses) but ignore list filters.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(event string, payload any) {
	p.events = append(p.events, event)
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	out := r.entries
	if filter.Action != "" {
		out = nil
		for _, e := range r.entries {
			if e.Action == filter.Action {
				out = append(out, e)
			}
		}
	}
	return out, int64(len(out)), nil
}

type fakeClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *fakeClientRepo) Create(ctx context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	if c, ok := r.clients[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClientRepo) List(ctx context.Context, filter repository.ClientFilter) ([]model.Client, int64, error) {
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeClientRepo) Update(ctx context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

type fakeUserRepo struct {
	users  map[uuid.UUID]*model.User
	tokens map[string]*model.RefreshToken
	codes  map[uuid.UUID]*model.VerificationCode
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[uuid.UUID]*model.User),
		tokens: make(map[string]*model.RefreshToken),
		codes:  make(map[uuid.UUID]*model.VerificationCode),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	if t, ok := r.tokens[token]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) SaveVerificationCode(ctx context.Context, code *model.VerificationCode) error {
	r.codes[code.UserID] = code
	return nil
}

func (r *fakeUserRepo) FindVerificationCode(ctx context.Context, userID uuid.UUID, code string) (*model.VerificationCode, error) {
	if c, ok := r.codes[userID]; ok && c.Code == code {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeLoanRepo struct {
	loans map[uuid.UUID]*model.Loan
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uuid.UUID]*model.Loan)}
}

func (r *fakeLoanRepo) Create(ctx context.Context, l *model.Loan) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.loans[l.ID] = l
	return nil
}

func (r *fakeLoanRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	if l, ok := r.loans[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLoanRepo) List(ctx context.Context, filter repository.LoanFilter) ([]model.Loan, int64, error) {
	out := make([]model.Loan, 0, len(r.loans))
	for _, l := range r.loans {
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLoanRepo) Update(ctx context.Context, l *model.Loan) error {
	r.loans[l.ID] = l
	return nil
}

func (r *fakeLoanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.loans, id)
	return nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
	summary  model.PaymentSummary
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments[p.ID] = p
	return nil
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	if p, ok := r.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) List(ctx context.Context, filter repository.PaymentFilter) ([]model.Payment, int64, error) {
	out := make([]model.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, p *model.Payment) error {
	r.payments[p.ID] = p
	return nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.payments, id)
	return nil
}

func (r *fakePaymentRepo) Summary(ctx context.Context) (model.PaymentSummary, error) {
	return r.summary, nil
}

type fakeExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
	summary  model.ExpenseSummary
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *fakeExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.expenses[e.ID] = e
	return nil
}

func (r *fakeExpenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	if e, ok := r.expenses[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeExpenseRepo) List(ctx context.Context, filter repository.ExpenseFilter) ([]model.Expense, int64, error) {
	out := make([]model.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeExpenseRepo) Update(ctx context.Context, e *model.Expense) error {
	r.expenses[e.ID] = e
	return nil
}

func (r *fakeExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.expenses, id)
	return nil
}

func (r *fakeExpenseRepo) Summary(ctx context.Context) (model.ExpenseSummary, error) {
	return r.summary, nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *fakeSupplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *fakeSupplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	if s, ok := r.suppliers[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSupplierRepo) List(ctx context.Context, filter repository.SupplierFilter) ([]model.Supplier, int64, error) {
	out := make([]model.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSupplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

func (r *fakeSupplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.suppliers, id)
	return nil
}

type fakeCutoffRepo struct {
	cutoffs map[uuid.UUID]*model.DailyCutoff
}

func newFakeCutoffRepo() *fakeCutoffRepo {
	return &fakeCutoffRepo{cutoffs: make(map[uuid.UUID]*model.DailyCutoff)}
}

func (r *fakeCutoffRepo) Create(ctx context.Context, c *model.DailyCutoff) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cutoffs[c.ID] = c
	return nil
}

func (r *fakeCutoffRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.DailyCutoff, error) {
	if c, ok := r.cutoffs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCutoffRepo) FindByDateAndResponsible(ctx context.Context, date time.Time, responsibleID uuid.UUID) (*model.DailyCutoff, error) {
	for _, c := range r.cutoffs {
		if c.ResponsibleID == responsibleID && c.CutoffDate.Equal(date) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCutoffRepo) List(ctx context.Context, filter repository.CutoffFilter) ([]model.DailyCutoff, int64, error) {
	out := make([]model.DailyCutoff, 0, len(r.cutoffs))
	for _, c := range r.cutoffs {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCutoffRepo) Update(ctx context.Context, c *model.DailyCutoff) error {
	r.cutoffs[c.ID] = c
	return nil
}

func (r *fakeCutoffRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.cutoffs, id)
	return nil
}

type fakeRouteRepo struct {
	routes map[uuid.UUID]*model.CollectionRoute
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{routes: make(map[uuid.UUID]*model.CollectionRoute)}
}

func (r *fakeRouteRepo) Create(ctx context.Context, route *model.CollectionRoute) error {
	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	r.routes[route.ID] = route
	return nil
}

func (r *fakeRouteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CollectionRoute, error) {
	if route, ok := r.routes[id]; ok {
		cp := *route
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRouteRepo) List(ctx context.Context, filter repository.RouteFilter) ([]model.CollectionRoute, int64, error) {
	out := make([]model.CollectionRoute, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, *route)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRouteRepo) Update(ctx context.Context, route *model.CollectionRoute) error {
	r.routes[route.ID] = route
	return nil
}

func (r *fakeRouteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.routes, id)
	return nil
}

// --- Seed helpers ---

func seedActiveClient(repo *fakeClientRepo) *model.Client {
	c := &model.Client{
		ID:              uuid.New(),
		Name:            "Maria",
		PaternalSurname: "Lopez",
		MaternalSurname: "Diaz",
		NationalID:      "LODM800101",
		Status:          model.ClientActive,
	}
	repo.clients[c.ID] = c
	return c
}

func seedActiveUser(repo *fakeUserRepo, role model.UserRole) *model.User {
	u := &model.User{
		ID:              uuid.New(),
		Role:            role,
		Name:            "Carlos",
		PaternalSurname: "Ramirez",
		MaternalSurname: "Soto",
		NationalID:      "RASC750202",
		Phone:           "5551234567",
		Email:           uuid.NewString() + "@paytrack.test",
		Status:          model.UserActive,
	}
	repo.users[u.ID] = u
	return u
}
