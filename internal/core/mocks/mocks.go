package mocks

import (
	"context"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockTicketGateway is a mock implementation of ports.TicketGateway
type MockTicketGateway struct {
	mock.Mock
}

func NewMockTicketGateway() *MockTicketGateway {
	return &MockTicketGateway{}
}

func (m *MockTicketGateway) ListTickets(ctx context.Context) ([]*domain.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketGateway) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketGateway) CreateTicket(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketGateway) UpdateTicket(ctx context.Context, id string, update domain.TicketUpdate) (*domain.Ticket, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketGateway) DeleteTicket(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDirectoryGateway is a mock implementation of ports.DirectoryGateway
type MockDirectoryGateway struct {
	mock.Mock
}

func NewMockDirectoryGateway() *MockDirectoryGateway {
	return &MockDirectoryGateway{}
}

func (m *MockDirectoryGateway) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockDirectoryGateway) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

// MockActivityRepository is a mock implementation of ports.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (m *MockActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByUser(ctx context.Context, params ports.ListActivityParams) ([]*domain.Activity, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, userID string, toast domain.Toast) {
	m.Called(ctx, userID, toast)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockBoardService is a mock implementation of ports.BoardService
type MockBoardService struct {
	mock.Mock
}

func NewMockBoardService() *MockBoardService {
	return &MockBoardService{}
}

func (m *MockBoardService) Snapshot(now time.Time) domain.BoardSnapshot {
	args := m.Called(now)
	return args.Get(0).(domain.BoardSnapshot)
}

func (m *MockBoardService) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBoardService) LoadDirectory(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBoardService) SetDateFilter(filter domain.DateFilter) {
	m.Called(filter)
}

func (m *MockBoardService) DragStart(ticketID string) error {
	args := m.Called(ticketID)
	return args.Error(0)
}

func (m *MockBoardService) DragOver() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockBoardService) Drop(ctx context.Context, target domain.TicketStatus) (*domain.MutationResult, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutationResult), args.Error(1)
}

func (m *MockBoardService) AssignEmployee(ctx context.Context, ticketID string, employeeID *string) (*domain.MutationResult, error) {
	args := m.Called(ctx, ticketID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutationResult), args.Error(1)
}

func (m *MockBoardService) CreateTicket(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBoardService) EditTicket(ctx context.Context, ticketID string, update domain.TicketUpdate) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBoardService) DeleteTicket(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

// MockBoardRegistry is a mock implementation of ports.BoardRegistry
type MockBoardRegistry struct {
	mock.Mock
}

func NewMockBoardRegistry() *MockBoardRegistry {
	return &MockBoardRegistry{}
}

func (m *MockBoardRegistry) Board(ctx context.Context, userID string) (ports.BoardService, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.BoardService), args.Error(1)
}

func (m *MockBoardRegistry) Len() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockBoardRegistry) Shutdown() {
	m.Called()
}

// MockActivityService is a mock implementation of ports.ActivityService
type MockActivityService struct {
	mock.Mock
}

func NewMockActivityService() *MockActivityService {
	return &MockActivityService{}
}

func (m *MockActivityService) ListActivity(ctx context.Context, params ports.ListActivityParams) ([]*domain.Activity, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *MockActivityService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}
