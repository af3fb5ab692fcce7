package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/repository"
)

func errNotFound() error { return repository.ErrNotFound }

type mockUserRepository struct {
	createErr    error
	createCalls  int
	createdUser  domain.User
	nextUserID   int64
	usersByEmail map[string]*domain.User
	usersByID    map[int64]*domain.User

	setActiveCalls  int
	setActiveErr    error
	setActiveID     int64
	setActiveActive bool

	updatePasswordCalls int
	updatePasswordErr   error
	updatePasswordHash  string

	updateGroupCalls   int
	updateGroupErr     error
	updateGroupGroupID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		nextUserID:   1,
		usersByEmail: map[string]*domain.User{},
		usersByID:    map[int64]*domain.User{},
	}
}

func (m *mockUserRepository) add(user domain.User) *domain.User {
	stored := user
	m.usersByEmail[stored.Email] = &stored
	m.usersByID[stored.ID] = &stored
	return &stored
}

func (m *mockUserRepository) Create(_ context.Context, user domain.User) (int64, error) {
	m.createCalls++
	m.createdUser = user
	if m.createErr != nil {
		return 0, m.createErr
	}
	id := m.nextUserID
	m.nextUserID++
	return id, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := m.usersByID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, errNotFound()
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, errNotFound()
}

func (m *mockUserRepository) SetActive(_ context.Context, id int64, active bool) error {
	m.setActiveCalls++
	m.setActiveID = id
	m.setActiveActive = active
	return m.setActiveErr
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, _ int64, hash string) error {
	m.updatePasswordCalls++
	m.updatePasswordHash = hash
	return m.updatePasswordErr
}

func (m *mockUserRepository) UpdateGroup(_ context.Context, _ int64, groupID int64) error {
	m.updateGroupCalls++
	m.updateGroupGroupID = groupID
	return m.updateGroupErr
}

type mockGroupRepository struct {
	groups map[domain.GroupName]*domain.UserGroup
}

func newMockGroupRepository() *mockGroupRepository {
	return &mockGroupRepository{groups: map[domain.GroupName]*domain.UserGroup{
		domain.GroupUser:      {ID: 1, Name: domain.GroupUser},
		domain.GroupModerator: {ID: 2, Name: domain.GroupModerator},
		domain.GroupAdmin:     {ID: 3, Name: domain.GroupAdmin},
	}}
}

func (m *mockGroupRepository) GetByName(_ context.Context, name domain.GroupName) (*domain.UserGroup, error) {
	if group, ok := m.groups[name]; ok {
		return group, nil
	}
	return nil, errNotFound()
}

func (m *mockGroupRepository) Seed(context.Context) error { return nil }

type mockTokenRepository struct {
	createErr    error
	createCalls  int
	lastCreated  domain.UserToken
	nextTokenID  int64
	tokens       []domain.UserToken
	deleteCalls  int
	deletedKinds []domain.TokenKind

	deleteByUserCalls int
	deleteByUserKinds []domain.TokenKind
}

func newMockTokenRepository() *mockTokenRepository {
	return &mockTokenRepository{nextTokenID: 1}
}

func (m *mockTokenRepository) Create(_ context.Context, token domain.UserToken) (int64, error) {
	m.createCalls++
	if m.createErr != nil {
		return 0, m.createErr
	}
	token.ID = m.nextTokenID
	m.nextTokenID++
	m.lastCreated = token
	m.tokens = append(m.tokens, token)
	return token.ID, nil
}

func (m *mockTokenRepository) GetByUserAndToken(_ context.Context, kind domain.TokenKind, userID int64, token string) (*domain.UserToken, error) {
	for _, stored := range m.tokens {
		if stored.Kind == kind && stored.UserID == userID && stored.Token == token {
			copied := stored
			return &copied, nil
		}
	}
	return nil, errNotFound()
}

func (m *mockTokenRepository) GetByToken(_ context.Context, kind domain.TokenKind, token string) (*domain.UserToken, error) {
	for _, stored := range m.tokens {
		if stored.Kind == kind && stored.Token == token {
			copied := stored
			return &copied, nil
		}
	}
	return nil, errNotFound()
}

func (m *mockTokenRepository) Delete(_ context.Context, kind domain.TokenKind, id int64) error {
	m.deleteCalls++
	m.deletedKinds = append(m.deletedKinds, kind)
	for i, stored := range m.tokens {
		if stored.Kind == kind && stored.ID == id {
			m.tokens = append(m.tokens[:i], m.tokens[i+1:]...)
			return nil
		}
	}
	return errNotFound()
}

func (m *mockTokenRepository) DeleteByUser(_ context.Context, kind domain.TokenKind, userID int64) error {
	m.deleteByUserCalls++
	m.deleteByUserKinds = append(m.deleteByUserKinds, kind)
	kept := m.tokens[:0]
	for _, stored := range m.tokens {
		if stored.Kind != kind || stored.UserID != userID {
			kept = append(kept, stored)
		}
	}
	m.tokens = kept
	return nil
}

func (m *mockTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	kept := m.tokens[:0]
	for _, stored := range m.tokens {
		if stored.Expired(now) {
			removed++
			continue
		}
		kept = append(kept, stored)
	}
	m.tokens = kept
	return removed, nil
}

type mockEmailSender struct {
	activationCalls    int
	activationLink     string
	activationTo       string
	completeCalls      int
	resetCalls         int
	resetLink          string
	resetCompleteCalls int
	paymentCalls       int
	paymentOrderID     int64
	err                error
}

func (m *mockEmailSender) SendActivationEmail(_ context.Context, to, link string) error {
	m.activationCalls++
	m.activationTo = to
	m.activationLink = link
	return m.err
}

func (m *mockEmailSender) SendActivationCompleteEmail(context.Context, string) error {
	m.completeCalls++
	return m.err
}

func (m *mockEmailSender) SendPasswordResetEmail(_ context.Context, _, link string) error {
	m.resetCalls++
	m.resetLink = link
	return m.err
}

func (m *mockEmailSender) SendPasswordResetCompleteEmail(context.Context, string) error {
	m.resetCompleteCalls++
	return m.err
}

func (m *mockEmailSender) SendPaymentSuccessEmail(_ context.Context, _ string, orderID int64) error {
	m.paymentCalls++
	m.paymentOrderID = orderID
	return m.err
}

type mockEventPublisher struct {
	registeredCalls    int
	registeredEvent    domain.UserRegisteredEvent
	activatedCalls     int
	orderPaidCalls     int
	orderPaidEvent     domain.OrderPaidEvent
	statusChangedCalls int
	statusChangedEvent domain.PaymentStatusChangedEvent
}

func (m *mockEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	m.registeredCalls++
	m.registeredEvent = event
	return nil
}

func (m *mockEventPublisher) PublishUserActivated(context.Context, domain.UserActivatedEvent) error {
	m.activatedCalls++
	return nil
}

func (m *mockEventPublisher) PublishOrderPaid(_ context.Context, event domain.OrderPaidEvent) error {
	m.orderPaidCalls++
	m.orderPaidEvent = event
	return nil
}

func (m *mockEventPublisher) PublishPaymentStatusChanged(_ context.Context, event domain.PaymentStatusChangedEvent) error {
	m.statusChangedCalls++
	m.statusChangedEvent = event
	return nil
}

type mockMovieRepository struct {
	moviesByID map[int64]*domain.Movie

	existsResult bool
	existsErr    error

	createErr   error
	createCalls int
	createInput port.MovieInput
	nextMovieID int64

	updateErr   error
	updateCalls int

	deleteErr   error
	deleteCalls int

	inAnyCartResult bool
	inAnyCartErr    error

	listResult  []domain.Movie
	listErr     error
	listFilter  port.MovieFilter
	countResult int
	countErr    error
}

func newMockMovieRepository() *mockMovieRepository {
	return &mockMovieRepository{moviesByID: map[int64]*domain.Movie{}, nextMovieID: 1}
}

func (m *mockMovieRepository) add(movie domain.Movie) *domain.Movie {
	stored := movie
	m.moviesByID[stored.ID] = &stored
	return &stored
}

func (m *mockMovieRepository) List(_ context.Context, filter port.MovieFilter) ([]domain.Movie, error) {
	m.listFilter = filter
	return m.listResult, m.listErr
}

func (m *mockMovieRepository) Count(context.Context, port.MovieFilter) (int, error) {
	return m.countResult, m.countErr
}

func (m *mockMovieRepository) GetByID(_ context.Context, id int64) (*domain.Movie, error) {
	if movie, ok := m.moviesByID[id]; ok {
		copied := *movie
		return &copied, nil
	}
	return nil, errNotFound()
}

func (m *mockMovieRepository) ExistsByTriple(context.Context, string, int, int) (bool, error) {
	return m.existsResult, m.existsErr
}

func (m *mockMovieRepository) Create(_ context.Context, input port.MovieInput) (int64, error) {
	m.createCalls++
	m.createInput = input
	if m.createErr != nil {
		return 0, m.createErr
	}
	id := m.nextMovieID
	m.nextMovieID++
	input.Movie.ID = id
	m.add(input.Movie)
	return id, nil
}

func (m *mockMovieRepository) Update(_ context.Context, movie domain.Movie) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.add(movie)
	return nil
}

func (m *mockMovieRepository) Delete(_ context.Context, id int64) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.moviesByID, id)
	return nil
}

func (m *mockMovieRepository) InAnyCart(context.Context, int64) (bool, error) {
	return m.inAnyCartResult, m.inAnyCartErr
}

type mockCartRepository struct {
	cart *domain.Cart

	getByUserErr   error
	getOrCreateErr error

	addItemErr   error
	addItemCalls int
	addedMovieID int64

	removeItemErr   error
	removeItemCalls int
}

func (m *mockCartRepository) GetByUser(context.Context, int64) (*domain.Cart, error) {
	if m.getByUserErr != nil {
		return nil, m.getByUserErr
	}
	copied := *m.cart
	return &copied, nil
}

func (m *mockCartRepository) GetOrCreate(context.Context, int64) (*domain.Cart, error) {
	if m.getOrCreateErr != nil {
		return nil, m.getOrCreateErr
	}
	copied := *m.cart
	return &copied, nil
}

func (m *mockCartRepository) AddItem(_ context.Context, _, movieID int64) (int64, error) {
	m.addItemCalls++
	m.addedMovieID = movieID
	if m.addItemErr != nil {
		return 0, m.addItemErr
	}
	return 1, nil
}

func (m *mockCartRepository) RemoveItem(context.Context, int64, int64) error {
	m.removeItemCalls++
	return m.removeItemErr
}

func (m *mockCartRepository) HasItem(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type mockOrderRepository struct {
	createResult *domain.Order
	createErr    error
	createCalls  int

	ordersByID map[int64]*domain.Order

	listResult  []domain.Order
	listErr     error
	listFilter  port.OrderFilter
	countResult int
	countErr    error

	updateStatusErr    error
	updateStatusCalls  int
	updateStatusID     int64
	updateStatusStatus domain.OrderStatus

	hasPaidResult bool
	hasPaidErr    error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{ordersByID: map[int64]*domain.Order{}}
}

func (m *mockOrderRepository) add(order domain.Order) *domain.Order {
	stored := order
	m.ordersByID[stored.ID] = &stored
	return &stored
}

func (m *mockOrderRepository) CreateFromCart(context.Context, int64) (*domain.Order, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResult, nil
}

func (m *mockOrderRepository) GetByID(_ context.Context, orderID int64) (*domain.Order, error) {
	if order, ok := m.ordersByID[orderID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, errNotFound()
}

func (m *mockOrderRepository) GetOwned(_ context.Context, userID, orderID int64) (*domain.Order, error) {
	order, ok := m.ordersByID[orderID]
	if !ok || order.UserID != userID {
		return nil, errNotFound()
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) ListByUser(context.Context, int64) ([]domain.Order, error) {
	return m.listResult, m.listErr
}

func (m *mockOrderRepository) List(_ context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	m.listFilter = filter
	return m.listResult, m.listErr
}

func (m *mockOrderRepository) Count(context.Context, port.OrderFilter) (int, error) {
	return m.countResult, m.countErr
}

func (m *mockOrderRepository) UpdateStatus(_ context.Context, orderID int64, status domain.OrderStatus) error {
	m.updateStatusCalls++
	m.updateStatusID = orderID
	m.updateStatusStatus = status
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	if order, ok := m.ordersByID[orderID]; ok {
		order.Status = status
	}
	return nil
}

func (m *mockOrderRepository) HasPaidItem(context.Context, int64, int64) (bool, error) {
	return m.hasPaidResult, m.hasPaidErr
}

type mockPaymentRepository struct {
	createErr     error
	createCalls   int
	created       domain.Payment
	nextPaymentID int64

	byExternalID map[string]*domain.Payment

	listResult  []domain.Payment
	listErr     error
	countResult int

	updateStatusCalls  int
	updateStatusErr    error
	updateStatusID     int64
	updateStatusStatus domain.PaymentStatus
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{nextPaymentID: 1, byExternalID: map[string]*domain.Payment{}}
}

func (m *mockPaymentRepository) add(payment domain.Payment) *domain.Payment {
	stored := payment
	m.byExternalID[stored.ExternalPaymentID] = &stored
	return &stored
}

func (m *mockPaymentRepository) Create(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	m.createCalls++
	m.created = payment
	if m.createErr != nil {
		return nil, m.createErr
	}
	payment.ID = m.nextPaymentID
	m.nextPaymentID++
	return m.add(payment), nil
}

func (m *mockPaymentRepository) GetByExternalID(_ context.Context, externalID string) (*domain.Payment, error) {
	if payment, ok := m.byExternalID[externalID]; ok {
		copied := *payment
		return &copied, nil
	}
	return nil, errNotFound()
}

func (m *mockPaymentRepository) List(context.Context, port.PaymentFilter) ([]domain.Payment, error) {
	return m.listResult, m.listErr
}

func (m *mockPaymentRepository) Count(context.Context, port.PaymentFilter) (int, error) {
	return m.countResult, nil
}

func (m *mockPaymentRepository) UpdateStatus(_ context.Context, paymentID int64, status domain.PaymentStatus) error {
	m.updateStatusCalls++
	m.updateStatusID = paymentID
	m.updateStatusStatus = status
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	for _, payment := range m.byExternalID {
		if payment.ID == paymentID {
			payment.Status = status
		}
	}
	return nil
}

type mockPaymentGateway struct {
	configured   bool
	intentResult *port.PaymentIntent
	intentErr    error
	intentCalls  int
	intentAmount decimal.Decimal
}

func (m *mockPaymentGateway) CreateIntent(_ context.Context, amount decimal.Decimal, _ string) (*port.PaymentIntent, error) {
	m.intentCalls++
	m.intentAmount = amount
	if m.intentErr != nil {
		return nil, m.intentErr
	}
	return m.intentResult, nil
}

func (m *mockPaymentGateway) VerifyWebhook([]byte, string) (*port.WebhookEvent, error) {
	return nil, errors.New("unexpected call: VerifyWebhook")
}

func (m *mockPaymentGateway) Configured() bool { return m.configured }
