package domain

import "time"

// Discount kinds accepted for a coupon.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a redeemable discount code. The uppercase code is the primary
// key, which is what enforces uniqueness.
type Coupon struct {
	Code           string     `json:"code" dynamodbav:"code"`
	DiscountType   string     `json:"discountType" dynamodbav:"discount_type"`
	DiscountValue  float64    `json:"discountValue" dynamodbav:"discount_value"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty" dynamodbav:"expiration_date"`
	UsageLimit     *int       `json:"usageLimit,omitempty" dynamodbav:"usage_limit"`
	UsedCount      int        `json:"usedCount" dynamodbav:"used_count"`
	IsActive       bool       `json:"isActive" dynamodbav:"is_active"`
	CreatedAt      time.Time  `json:"createdAt" dynamodbav:"created_at"`
	CreatedBy      string     `json:"createdBy" dynamodbav:"created_by"`
}

type CreateCouponRequest struct {
	Code           string  `json:"code" validate:"required"`
	DiscountType   string  `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue  float64 `json:"discountValue" validate:"required,gt=0"`
	ExpirationDate *string `json:"expirationDate"` // YYYY-MM-DD or RFC3339
	UsageLimit     *int    `json:"usageLimit" validate:"omitempty,gt=0"`
	IsActive       *bool   `json:"isActive"` // defaults to true
}

type UpdateCouponRequest struct {
	DiscountType   *string  `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue  *float64 `json:"discountValue" validate:"omitempty,gt=0"`
	ExpirationDate *string  `json:"expirationDate"`
	UsageLimit     *int     `json:"usageLimit" validate:"omitempty,gt=0"`
	IsActive       *bool    `json:"isActive"`
}

// CouponUser describes one account that redeemed a given code, with the
// evidence found (transaction records, stored history entries, or both).
type CouponUser struct {
	AccountID    string        `json:"userId"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Transactions []Transaction `json:"couponTransactions,omitempty"`
	HistoryUses  []CouponUse   `json:"couponHistory,omitempty"`
	TotalUsage   int           `json:"totalUsage"`
}

// CouponStats backs the coupon dashboard cards.
type CouponStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}
