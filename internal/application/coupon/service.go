package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/admin-console-api/internal/domain"
	"github.com/admin-console-api/internal/pkg/listview"
	"github.com/admin-console-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldDiscountType   = "discount_type"
	fieldDiscountValue  = "discount_value"
	fieldExpirationDate = "expiration_date"
	fieldUsageLimit     = "usage_limit"
	fieldIsActive       = "is_active"
)

// ListOptions selects and orders the coupon collection. Coupons are few
// enough that the list endpoint returns them unpaged.
type ListOptions struct {
	Filter    listview.CouponFilter
	SortField listview.CouponSortField
	Desc      bool
}

// UsersReport lists every account that redeemed a code, either through a
// recorded transaction or a stored history entry.
type UsersReport struct {
	CouponCode string              `json:"couponCode"`
	Users      []domain.CouponUser `json:"users"`
	TotalUsers int                 `json:"totalUsers"`
}

type Service interface {
	List(ctx context.Context, opts ListOptions) ([]domain.Coupon, error)
	Stats(ctx context.Context) (*domain.CouponStats, error)
	Create(ctx context.Context, req domain.CreateCouponRequest, createdBy string) (*domain.Coupon, error)
	Update(ctx context.Context, code string, req domain.UpdateCouponRequest) (*domain.Coupon, error)
	Delete(ctx context.Context, code string) error
	Users(ctx context.Context, code string) (*UsersReport, error)
}

type couponStore interface {
	Create(ctx context.Context, c *domain.Coupon) error
	Get(ctx context.Context, code string) (*domain.Coupon, error)
	Scan(ctx context.Context) ([]domain.Coupon, error)
	Update(ctx context.Context, code string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, code string) error
}

type accountStore interface {
	Scan(ctx context.Context) ([]domain.Account, error)
}

type transactionStore interface {
	ListByAccountAndCoupon(ctx context.Context, accountID, code string) ([]domain.Transaction, error)
}

type service struct {
	repo    couponStore
	accRepo accountStore
	txRepo  transactionStore
}

func NewService(repo couponStore, accRepo accountStore, txRepo transactionStore) Service {
	return &service{repo: repo, accRepo: accRepo, txRepo: txRepo}
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]domain.Coupon, error) {
	coupons, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	filtered := listview.FilterCoupons(coupons, opts.Filter)
	return listview.SortCoupons(filtered, opts.SortField, opts.Desc), nil
}

func (s *service) Stats(ctx context.Context) (*domain.CouponStats, error) {
	coupons, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.CouponStats{Total: len(coupons)}
	for _, c := range coupons {
		if c.IsActive {
			stats.Active++
		}
	}
	return stats, nil
}

// Create validates the request, normalizes the code to uppercase and stores
// the coupon. A percentage discount over 100 is rejected. Duplicate codes
// surface as ErrConflict from the store's conditional put.
func (s *service) Create(ctx context.Context, req domain.CreateCouponRequest, createdBy string) (*domain.Coupon, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if req.DiscountType == domain.DiscountPercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100: %w", domain.ErrBadRequest)
	}

	expiration, err := parseExpiration(req.ExpirationDate)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	c := &domain.Coupon{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		ExpirationDate: expiration,
		UsageLimit:     req.UsageLimit,
		UsedCount:      0,
		IsActive:       active,
		CreatedAt:      time.Now().UTC(),
		CreatedBy:      createdBy,
	}
	if c.Code == "" {
		return nil, fmt.Errorf("coupon code cannot be blank: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial field merge. The discount value is cross-checked
// against the effective discount type, so switching a fixed coupon to
// percentage with a stored value over 100 is rejected too.
func (s *service) Update(ctx context.Context, code string, req domain.UpdateCouponRequest) (*domain.Coupon, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	current, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	effectiveType := current.DiscountType
	if req.DiscountType != nil {
		effectiveType = *req.DiscountType
	}
	effectiveValue := current.DiscountValue
	if req.DiscountValue != nil {
		effectiveValue = *req.DiscountValue
	}
	if effectiveType == domain.DiscountPercentage && effectiveValue > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100: %w", domain.ErrBadRequest)
	}

	updates := map[string]interface{}{}
	if req.DiscountType != nil {
		updates[fieldDiscountType] = *req.DiscountType
	}
	if req.DiscountValue != nil {
		updates[fieldDiscountValue] = *req.DiscountValue
	}
	if req.ExpirationDate != nil {
		expiration, err := parseExpiration(req.ExpirationDate)
		if err != nil {
			return nil, err
		}
		if expiration != nil {
			updates[fieldExpirationDate] = expiration.Format(time.RFC3339)
		}
	}
	if req.UsageLimit != nil {
		updates[fieldUsageLimit] = *req.UsageLimit
	}
	if req.IsActive != nil {
		updates[fieldIsActive] = *req.IsActive
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := s.repo.Update(ctx, code, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, code)
}

func (s *service) Delete(ctx context.Context, code string) error {
	return s.repo.HardDelete(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// Users joins accounts against the code two ways: transaction records tagged
// with the code, and the coupon history stored on the account itself. Either
// kind of evidence makes the account a user of the code. Administrator
// accounts are left out, same as the account listing.
func (s *service) Users(ctx context.Context, code string) (*UsersReport, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("couponCode is required: %w", domain.ErrBadRequest)
	}

	accounts, err := s.accRepo.Scan(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]domain.CouponUser, 0)
	for _, a := range accounts {
		if a.IsAdministrator() {
			continue
		}
		txs, err := s.txRepo.ListByAccountAndCoupon(ctx, a.AccountID, code)
		if err != nil {
			return nil, err
		}
		var historyUses []domain.CouponUse
		for _, use := range a.CouponHistory {
			if strings.EqualFold(use.Code, code) {
				historyUses = append(historyUses, use)
			}
		}
		total := len(txs) + len(historyUses)
		if total == 0 {
			continue
		}
		users = append(users, domain.CouponUser{
			AccountID:    a.AccountID,
			Name:         a.Name,
			Email:        a.Email,
			Transactions: txs,
			HistoryUses:  historyUses,
			TotalUsage:   total,
		})
	}

	return &UsersReport{CouponCode: code, Users: users, TotalUsers: len(users)}, nil
}

func parseExpiration(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid expiration date %q: %w", s, domain.ErrBadRequest)
}
