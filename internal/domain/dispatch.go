package domain

import (
	"encoding/json"
	"fmt"
)

// Template type names accepted by the dispatcher.
const (
	TemplateUserRegistration = "userRegistration"
	TemplateCouponCreated    = "couponCreated"
	TemplateAccountDisabled  = "accountDisabled"
	TemplateAccountEnabled   = "accountEnabled"
)

// TemplateData carries the per-recipient substitution variables a template
// may use. Unused fields are ignored by templates that don't need them.
type TemplateData struct {
	UserName      string  `json:"userName,omitempty"`
	UserEmail     string  `json:"userEmail,omitempty"`
	CouponCode    string  `json:"couponCode,omitempty"`
	DiscountValue float64 `json:"discountValue,omitempty"`
	DiscountType  string  `json:"discountType,omitempty"`
}

type SendEmailRequest struct {
	To            string       `json:"to" validate:"required"`
	TemplateType  string       `json:"templateType"`
	TemplateData  TemplateData `json:"templateData"`
	CustomSubject string       `json:"customSubject"`
	CustomHTML    string       `json:"customHtml"`
	CustomText    string       `json:"customText"`
}

// TargetSelector is the bulk-dispatch recipient specification: one of the
// group keywords ("all", "active", "disabled") or an explicit account id list.
type TargetSelector struct {
	Group      string
	AccountIDs []string
}

const (
	TargetAll      = "all"
	TargetActive   = "active"
	TargetDisabled = "disabled"
)

// UnmarshalJSON accepts either a keyword string or an array of account ids,
// matching the wire contract of the bulk endpoint.
func (t *TargetSelector) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case TargetAll, TargetActive, TargetDisabled:
			t.Group = s
			return nil
		default:
			return fmt.Errorf("invalid targetUsers keyword %q", s)
		}
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("targetUsers must be %q, %q, %q or an array of account ids",
			TargetAll, TargetActive, TargetDisabled)
	}
	t.AccountIDs = ids
	return nil
}

type BulkEmailRequest struct {
	TargetUsers   *TargetSelector `json:"targetUsers"`
	ManualEmails  []string        `json:"manualEmails"`
	TemplateType  string          `json:"templateType"`
	TemplateData  TemplateData    `json:"templateData"`
	CustomSubject string          `json:"customSubject"`
	CustomHTML    string          `json:"customHtml"`
	CustomText    string          `json:"customText"`
}

// DispatchResult is the per-recipient outcome of one send within a batch.
// Ephemeral: built per dispatch call, never persisted.
type DispatchResult struct {
	AccountID string `json:"userId,omitempty"`
	Email     string `json:"email"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchResult aggregates a whole dispatch batch. The invariant
// len(Successful)+len(Failed) == Total holds regardless of which sends fail.
type BatchResult struct {
	Successful []DispatchResult `json:"successful"`
	Failed     []DispatchResult `json:"failed"`
	Total      int              `json:"total"`
}
