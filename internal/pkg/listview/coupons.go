package listview

import (
	"sort"

	"github.com/admin-console-api/internal/domain"
)

// CouponFilter selects coupons by active flag.
type CouponFilter string

const (
	CouponFilterAll      CouponFilter = "all"
	CouponFilterActive   CouponFilter = "active"
	CouponFilterInactive CouponFilter = "inactive"
)

func ParseCouponFilter(s string) CouponFilter {
	switch CouponFilter(s) {
	case CouponFilterActive, CouponFilterInactive:
		return CouponFilter(s)
	default:
		return CouponFilterAll
	}
}

func FilterCoupons(coupons []domain.Coupon, f CouponFilter) []domain.Coupon {
	if f == CouponFilterAll {
		return coupons
	}
	out := make([]domain.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if (f == CouponFilterActive) == c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// CouponSortField is the enumerated set of sortable coupon fields.
type CouponSortField string

const (
	CouponSortCode          CouponSortField = "code"
	CouponSortDiscountValue CouponSortField = "discountValue"
	CouponSortUsedCount     CouponSortField = "usedCount"
	CouponSortCreatedAt     CouponSortField = "createdAt"
)

func ParseCouponSortField(s string) CouponSortField {
	switch CouponSortField(s) {
	case CouponSortCode, CouponSortDiscountValue, CouponSortUsedCount:
		return CouponSortField(s)
	default:
		return CouponSortCreatedAt
	}
}

// SortCoupons returns a sorted copy; the input slice is left untouched.
func SortCoupons(coupons []domain.Coupon, field CouponSortField, desc bool) []domain.Coupon {
	out := make([]domain.Coupon, len(coupons))
	copy(out, coupons)
	less := couponLess(field)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func couponLess(field CouponSortField) func(a, b domain.Coupon) bool {
	switch field {
	case CouponSortCode:
		return func(a, b domain.Coupon) bool { return a.Code < b.Code }
	case CouponSortDiscountValue:
		return func(a, b domain.Coupon) bool { return a.DiscountValue < b.DiscountValue }
	case CouponSortUsedCount:
		return func(a, b domain.Coupon) bool { return a.UsedCount < b.UsedCount }
	default:
		return func(a, b domain.Coupon) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
