package handler

import (
	"encoding/json"
	"net/http"

	"github.com/admin-console-api/internal/application/coupon"
	"github.com/admin-console-api/internal/domain"
	"github.com/admin-console-api/internal/pkg/listview"
	"github.com/admin-console-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// CouponHandler handles coupon endpoints.
type CouponHandler struct {
	svc coupon.Service
}

func NewCouponHandler(svc coupon.Service) *CouponHandler {
	return &CouponHandler{svc: svc}
}

func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	coupons, err := h.svc.List(r.Context(), coupon.ListOptions{
		Filter:    listview.ParseCouponFilter(q.Get("filter")),
		SortField: listview.ParseCouponSortField(q.Get("sort_by")),
		Desc:      q.Get("sort_order") == "desc",
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CouponListEnvelope{Data: coupons})
}

func (h *CouponHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	createdBy := ""
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		createdBy = claims.Email
	}
	c, err := h.svc.Create(r.Context(), req, createdBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.Update(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "coupon deleted"})
}

func (h *CouponHandler) Users(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Users(r.Context(), r.URL.Query().Get("couponCode"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
