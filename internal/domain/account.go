package domain

import "time"

// Account is a platform end-user record. Administrator accounts live in the
// same table but are excluded from every listing and every dispatch batch.
type Account struct {
	AccountID         string     `json:"id" dynamodbav:"account_id"`
	Name              string     `json:"name" dynamodbav:"name"`
	Email             string     `json:"email" dynamodbav:"email"`
	CreditBalance     float64    `json:"creditBalance" dynamodbav:"credit_balance"`
	Disabled          bool       `json:"isDisabled" dynamodbav:"is_disabled"`
	IsAdmin           bool       `json:"-" dynamodbav:"is_admin"`
	Role              string     `json:"role,omitempty" dynamodbav:"role"`
	CouponHistory     []CouponUse `json:"couponHistory,omitempty" dynamodbav:"coupon_history"`
	LastBalanceUpdate *time.Time `json:"lastBalanceUpdate,omitempty" dynamodbav:"last_balance_update"`
	CreatedAt         time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" dynamodbav:"updated_at"`

	// Joined sub-records, populated on demand; never written back.
	Transactions []Transaction `json:"transactions,omitempty" dynamodbav:"-"`
	Tasks        []Task        `json:"tasks,omitempty" dynamodbav:"-"`
}

// IsAdministrator reports whether the account is flagged as an administrator.
// Two flag conventions exist in stored data (a boolean and a role string);
// both are honored.
func (a *Account) IsAdministrator() bool {
	return a.IsAdmin || a.Role == RoleAdmin
}

// CouponUse is one redemption entry in an account's stored coupon history.
type CouponUse struct {
	Code   string    `json:"code" dynamodbav:"code"`
	UsedAt time.Time `json:"usedAt" dynamodbav:"used_at"`
}

// Transaction is an append-only balance movement nested under an account.
// Writes originate in the purchase flow; this system only reads them.
type Transaction struct {
	TransactionID string    `json:"id" dynamodbav:"transaction_id"`
	AccountID     string    `json:"accountId" dynamodbav:"account_id"`
	Balance       float64   `json:"balance" dynamodbav:"balance"`
	Description   string    `json:"description" dynamodbav:"description"`
	Amount        float64   `json:"amount" dynamodbav:"amount"`
	Type          string    `json:"type" dynamodbav:"type"`
	TaskID        *string   `json:"taskId,omitempty" dynamodbav:"task_id"`
	CouponCode    *string   `json:"couponCode,omitempty" dynamodbav:"coupon_code"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// Task is a work item nested under an account. Read-only here.
type Task struct {
	TaskID    string    `json:"id" dynamodbav:"task_id"`
	AccountID string    `json:"accountId" dynamodbav:"account_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Status    string    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}

type UpdateAccountRequest struct {
	Name          *string  `json:"name"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	CreditBalance *float64 `json:"creditBalance"`
	Disabled      *bool    `json:"isDisabled"`
}

// AccountStats backs the dashboard stat cards. Administrator accounts are
// excluded from every figure.
type AccountStats struct {
	Total              int     `json:"total"`
	Active             int     `json:"active"`
	Disabled           int     `json:"disabled"`
	TotalCreditBalance float64 `json:"totalCreditBalance"`
}
