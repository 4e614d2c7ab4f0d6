// Package listview holds the pure in-memory list transformations behind the
// console tables: filter predicate, sort comparator, page slice. No I/O;
// given the same input the output is fully deterministic.
package listview

import (
	"sort"
	"time"

	"github.com/admin-console-api/internal/domain"
)

// AccountFilter selects accounts by disabled status.
type AccountFilter string

const (
	AccountFilterAll      AccountFilter = "all"
	AccountFilterActive   AccountFilter = "active"
	AccountFilterDisabled AccountFilter = "disabled"
)

// ParseAccountFilter maps a query-string value to a filter. Unknown values
// mean no filtering.
func ParseAccountFilter(s string) AccountFilter {
	switch AccountFilter(s) {
	case AccountFilterActive, AccountFilterDisabled:
		return AccountFilter(s)
	default:
		return AccountFilterAll
	}
}

// FilterAccounts returns the accounts matching the filter, preserving order.
func FilterAccounts(accounts []domain.Account, f AccountFilter) []domain.Account {
	if f == AccountFilterAll {
		return accounts
	}
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if (f == AccountFilterDisabled) == a.Disabled {
			out = append(out, a)
		}
	}
	return out
}

// AccountSortField is the enumerated set of sortable account fields, each
// backed by a typed accessor.
type AccountSortField string

const (
	AccountSortName              AccountSortField = "name"
	AccountSortEmail             AccountSortField = "email"
	AccountSortCreditBalance     AccountSortField = "creditBalance"
	AccountSortCreatedAt         AccountSortField = "createdAt"
	AccountSortLastBalanceUpdate AccountSortField = "lastBalanceUpdate"
)

// ParseAccountSortField maps a query-string value to a sort field, falling
// back to createdAt for anything unrecognized.
func ParseAccountSortField(s string) AccountSortField {
	switch AccountSortField(s) {
	case AccountSortName, AccountSortEmail, AccountSortCreditBalance, AccountSortLastBalanceUpdate:
		return AccountSortField(s)
	default:
		return AccountSortCreatedAt
	}
}

// SortAccounts returns a sorted copy; the input slice is left untouched.
func SortAccounts(accounts []domain.Account, field AccountSortField, desc bool) []domain.Account {
	out := make([]domain.Account, len(accounts))
	copy(out, accounts)
	less := accountLess(field)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func accountLess(field AccountSortField) func(a, b domain.Account) bool {
	switch field {
	case AccountSortName:
		return func(a, b domain.Account) bool { return a.Name < b.Name }
	case AccountSortEmail:
		return func(a, b domain.Account) bool { return a.Email < b.Email }
	case AccountSortCreditBalance:
		return func(a, b domain.Account) bool { return a.CreditBalance < b.CreditBalance }
	case AccountSortLastBalanceUpdate:
		return func(a, b domain.Account) bool {
			return instant(a.LastBalanceUpdate).Before(instant(b.LastBalanceUpdate))
		}
	default:
		return func(a, b domain.Account) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

// instant treats a missing optional timestamp as the zero instant so records
// without one sort before everything else ascending.
func instant(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
