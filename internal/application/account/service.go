package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin-console-api/internal/domain"
	"github.com/admin-console-api/internal/pkg/listview"
	"github.com/admin-console-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName              = "name"
	fieldEmail             = "email"
	fieldCreditBalance     = "credit_balance"
	fieldDisabled          = "is_disabled"
	fieldLastBalanceUpdate = "last_balance_update"
)

// ListOptions selects, orders and pages the account collection.
type ListOptions struct {
	Filter         listview.AccountFilter
	SortField      listview.AccountSortField
	Desc           bool
	Page           int
	IncludeHistory bool
}

// ListResult is one page of the filtered, sorted collection.
type ListResult struct {
	Accounts   []domain.Account
	Page       int
	TotalPages int
	TotalCount int
}

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Stats(ctx context.Context) (*domain.AccountStats, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error)
	Delete(ctx context.Context, accountID string) error
	SetDisabled(ctx context.Context, accountID string, disabled bool) (*domain.Account, error)
}

type accountStore interface {
	Scan(ctx context.Context) ([]domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, accountID string) error
}

type transactionStore interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

type taskStore interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Task, error)
}

type notifier interface {
	Send(ctx context.Context, req domain.SendEmailRequest) (string, error)
}

type service struct {
	repo     accountStore
	txRepo   transactionStore
	taskRepo taskStore
	notifier notifier
}

func NewService(repo accountStore, txRepo transactionStore, taskRepo taskStore, n notifier) Service {
	return &service{repo: repo, txRepo: txRepo, taskRepo: taskRepo, notifier: n}
}

// List pulls the whole collection, drops administrator accounts, then applies
// the in-memory view-model (filter, sort, page). With IncludeHistory each
// paged account gets its transactions and tasks joined one account at a time.
func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	accounts, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsAdministrator() {
			continue
		}
		visible = append(visible, a)
	}

	filtered := listview.FilterAccounts(visible, opts.Filter)
	sorted := listview.SortAccounts(filtered, opts.SortField, opts.Desc)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	items := listview.Page(sorted, page)

	if opts.IncludeHistory {
		for i := range items {
			if err := s.joinHistory(ctx, &items[i]); err != nil {
				return nil, err
			}
		}
	}

	return &ListResult{
		Accounts:   items,
		Page:       page,
		TotalPages: listview.TotalPages(len(filtered)),
		TotalCount: len(filtered),
	}, nil
}

// Stats aggregates dashboard figures over non-administrator accounts.
func (s *service) Stats(ctx context.Context) (*domain.AccountStats, error) {
	accounts, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.AccountStats{}
	for _, a := range accounts {
		if a.IsAdministrator() {
			continue
		}
		stats.Total++
		if a.Disabled {
			stats.Disabled++
		} else {
			stats.Active++
		}
		stats.TotalCreditBalance += a.CreditBalance
	}
	return stats, nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.joinHistory(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.CreditBalance != nil {
		updates[fieldCreditBalance] = *req.CreditBalance
		updates[fieldLastBalanceUpdate] = time.Now().UTC().Format(time.RFC3339)
	}
	if req.Disabled != nil {
		updates[fieldDisabled] = *req.Disabled
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, accountID)
	}
	if err := s.repo.Update(ctx, accountID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, accountID)
}

// Delete removes the record permanently. There is no soft-delete path for
// accounts; this is the explicit irreversible administrator action.
func (s *service) Delete(ctx context.Context, accountID string) error {
	return s.repo.HardDelete(ctx, accountID)
}

// SetDisabled flips the disabled flag and notifies the account holder with
// the matching status template. The notification is best effort: a relay
// failure is logged and never rolls back the toggle.
func (s *service) SetDisabled(ctx context.Context, accountID string, disabled bool) (*domain.Account, error) {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, accountID, map[string]interface{}{fieldDisabled: disabled}); err != nil {
		return nil, err
	}
	a.Disabled = disabled

	if a.Email != "" {
		templateType := domain.TemplateAccountEnabled
		if disabled {
			templateType = domain.TemplateAccountDisabled
		}
		name := a.Name
		if name == "" {
			name = "User"
		}
		_, err := s.notifier.Send(ctx, domain.SendEmailRequest{
			To:           a.Email,
			TemplateType: templateType,
			TemplateData: domain.TemplateData{UserName: name, UserEmail: a.Email},
		})
		if err != nil {
			slog.Warn("status notification failed", "account", accountID, "err", err)
		}
	}
	return a, nil
}

func (s *service) joinHistory(ctx context.Context, a *domain.Account) error {
	txs, err := s.txRepo.ListByAccount(ctx, a.AccountID)
	if err != nil {
		return err
	}
	tasks, err := s.taskRepo.ListByAccount(ctx, a.AccountID)
	if err != nil {
		return err
	}
	a.Transactions = txs
	a.Tasks = tasks
	return nil
}
