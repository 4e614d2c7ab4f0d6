package account

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/admin-console-api/internal/domain"
	"github.com/admin-console-api/internal/pkg/listview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Scan(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if a, _ := args.Get(0).([]domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	return m.Called(ctx, accountID, updates).Error(0)
}
func (m *mockAccountStore) HardDelete(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type mockTxStore struct{ mock.Mock }

func (m *mockTxStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID)
	if t, _ := args.Get(0).([]domain.Transaction); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTaskStore struct{ mock.Mock }

func (m *mockTaskStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Task, error) {
	args := m.Called(ctx, accountID)
	if t, _ := args.Get(0).([]domain.Task); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, req domain.SendEmailRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func ptr[T any](v T) *T { return &v }

func newService(as *mockAccountStore, tx *mockTxStore, tk *mockTaskStore, n *mockNotifier) Service {
	return NewService(as, tx, tk, n)
}

func storedAccounts() []domain.Account {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := []domain.Account{
		{AccountID: "admin1", Name: "Root", Email: "root@example.com", IsAdmin: true},
		{AccountID: "admin2", Name: "Ops", Email: "ops@example.com", Role: domain.RoleAdmin},
	}
	for i := 0; i < 15; i++ {
		out = append(out, domain.Account{
			AccountID:     fmt.Sprintf("u%02d", i),
			Name:          fmt.Sprintf("User %02d", i),
			Email:         fmt.Sprintf("user%02d@example.com", i),
			CreditBalance: float64(i),
			Disabled:      i%5 == 0,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

// --- List ---

func TestList_ExcludesAdministrators(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(storedAccounts(), nil)

	svc := newService(as, nil, nil, nil)
	res, err := svc.List(context.Background(), ListOptions{Filter: listview.AccountFilterAll, Page: 1})

	require.NoError(t, err)
	assert.Equal(t, 15, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
	for _, a := range res.Accounts {
		assert.False(t, a.IsAdministrator())
	}
}

func TestList_FilterSortAndPage(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(storedAccounts(), nil)

	svc := newService(as, nil, nil, nil)
	res, err := svc.List(context.Background(), ListOptions{
		Filter:    listview.AccountFilterActive,
		SortField: listview.AccountSortCreditBalance,
		Desc:      true,
		Page:      1,
	})

	require.NoError(t, err)
	assert.Equal(t, 12, res.TotalCount) // u00, u05, u10 are disabled
	require.NotEmpty(t, res.Accounts)
	assert.Equal(t, float64(14), res.Accounts[0].CreditBalance)
}

func TestList_IncludeHistory_JoinsPerAccount(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return([]domain.Account{
		{AccountID: "u1", Name: "Ana", Email: "ana@example.com"},
	}, nil)
	tx := &mockTxStore{}
	tx.On("ListByAccount", mock.Anything, "u1").Return([]domain.Transaction{{TransactionID: "t1"}}, nil)
	tk := &mockTaskStore{}
	tk.On("ListByAccount", mock.Anything, "u1").Return([]domain.Task{{TaskID: "k1"}, {TaskID: "k2"}}, nil)

	svc := newService(as, tx, tk, nil)
	res, err := svc.List(context.Background(), ListOptions{Page: 1, IncludeHistory: true})

	require.NoError(t, err)
	require.Len(t, res.Accounts, 1)
	assert.Len(t, res.Accounts[0].Transactions, 1)
	assert.Len(t, res.Accounts[0].Tasks, 2)
	tx.AssertExpectations(t)
	tk.AssertExpectations(t)
}

func TestList_ScanErrorPropagates(t *testing.T) {
	as := &mockAccountStore{}
	scanErr := errors.New("dynamo error")
	as.On("Scan", mock.Anything).Return(nil, scanErr)

	svc := newService(as, nil, nil, nil)
	_, err := svc.List(context.Background(), ListOptions{Page: 1})
	assert.Equal(t, scanErr, err)
}

// --- Stats ---

func TestStats_CountsAndBalance(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(storedAccounts(), nil)

	svc := newService(as, nil, nil, nil)
	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 15, stats.Total)
	assert.Equal(t, 3, stats.Disabled)
	assert.Equal(t, 12, stats.Active)
	assert.Equal(t, float64(105), stats.TotalCreditBalance) // 0+1+...+14
	assert.Equal(t, stats.Total, stats.Active+stats.Disabled)
}

// --- Update ---

func TestUpdate_EmptyRequest_ReturnsExistingAccount(t *testing.T) {
	as := &mockAccountStore{}
	existing := &domain.Account{AccountID: "u1", Name: "Ana"}
	as.On("Get", mock.Anything, "u1").Return(existing, nil)

	svc := newService(as, nil, nil, nil)
	a, err := svc.Update(context.Background(), "u1", domain.UpdateAccountRequest{})

	require.NoError(t, err)
	assert.Equal(t, existing, a)
	as.AssertExpectations(t)
}

func TestUpdate_InvalidEmail(t *testing.T) {
	svc := newService(&mockAccountStore{}, nil, nil, nil)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateAccountRequest{
		Email: ptr("not-an-email"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_BalanceChange_StampsLastBalanceUpdate(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, hasBalance := updates[fieldCreditBalance]
		_, hasStamp := updates[fieldLastBalanceUpdate]
		return hasBalance && hasStamp
	})).Return(nil)
	as.On("Get", mock.Anything, "u1").Return(&domain.Account{AccountID: "u1"}, nil)

	svc := newService(as, nil, nil, nil)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateAccountRequest{
		CreditBalance: ptr(99.5),
	})

	require.NoError(t, err)
	as.AssertExpectations(t)
}

func TestUpdate_NameOnly_NoBalanceStamp(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, hasStamp := updates[fieldLastBalanceUpdate]
		return updates[fieldName] == "Bea" && !hasStamp
	})).Return(nil)
	as.On("Get", mock.Anything, "u1").Return(&domain.Account{AccountID: "u1", Name: "Bea"}, nil)

	svc := newService(as, nil, nil, nil)
	a, err := svc.Update(context.Background(), "u1", domain.UpdateAccountRequest{Name: ptr("Bea")})

	require.NoError(t, err)
	assert.Equal(t, "Bea", a.Name)
}

// --- Delete ---

func TestDelete_HardDeletes(t *testing.T) {
	as := &mockAccountStore{}
	as.On("HardDelete", mock.Anything, "u1").Return(nil)

	svc := newService(as, nil, nil, nil)
	require.NoError(t, svc.Delete(context.Background(), "u1"))
	as.AssertExpectations(t)
}

// --- SetDisabled ---

func TestSetDisabled_SendsStatusTemplate(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Get", mock.Anything, "u1").Return(&domain.Account{
		AccountID: "u1", Name: "Ana", Email: "ana@example.com",
	}, nil)
	as.On("Update", mock.Anything, "u1", map[string]interface{}{fieldDisabled: true}).Return(nil)

	n := &mockNotifier{}
	n.On("Send", mock.Anything, mock.MatchedBy(func(req domain.SendEmailRequest) bool {
		return req.To == "ana@example.com" &&
			req.TemplateType == domain.TemplateAccountDisabled &&
			req.TemplateData.UserName == "Ana"
	})).Return("<id@test>", nil)

	svc := newService(as, nil, nil, n)
	a, err := svc.SetDisabled(context.Background(), "u1", true)

	require.NoError(t, err)
	assert.True(t, a.Disabled)
	n.AssertExpectations(t)
}

func TestSetDisabled_ReEnable_UsesEnabledTemplate(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Get", mock.Anything, "u1").Return(&domain.Account{
		AccountID: "u1", Name: "Ana", Email: "ana@example.com", Disabled: true,
	}, nil)
	as.On("Update", mock.Anything, "u1", map[string]interface{}{fieldDisabled: false}).Return(nil)

	n := &mockNotifier{}
	n.On("Send", mock.Anything, mock.MatchedBy(func(req domain.SendEmailRequest) bool {
		return req.TemplateType == domain.TemplateAccountEnabled
	})).Return("<id@test>", nil)

	svc := newService(as, nil, nil, n)
	a, err := svc.SetDisabled(context.Background(), "u1", false)

	require.NoError(t, err)
	assert.False(t, a.Disabled)
}

func TestSetDisabled_NotificationFailureDoesNotFailToggle(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Get", mock.Anything, "u1").Return(&domain.Account{
		AccountID: "u1", Name: "Ana", Email: "ana@example.com",
	}, nil)
	as.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)

	n := &mockNotifier{}
	n.On("Send", mock.Anything, mock.Anything).Return("", errors.New("relay down"))

	svc := newService(as, nil, nil, n)
	_, err := svc.SetDisabled(context.Background(), "u1", true)
	assert.NoError(t, err)
}

func TestSetDisabled_NoEmail_SkipsNotification(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Get", mock.Anything, "u1").Return(&domain.Account{AccountID: "u1", Name: "Ana"}, nil)
	as.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)

	n := &mockNotifier{}

	svc := newService(as, nil, nil, n)
	_, err := svc.SetDisabled(context.Background(), "u1", true)
	require.NoError(t, err)
	n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
