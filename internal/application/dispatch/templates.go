package dispatch

import (
	"fmt"

	"github.com/admin-console-api/internal/domain"
)

// renderedEmail is a fully resolved message ready for the relay.
type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

type templateFunc func(data domain.TemplateData) renderedEmail

// templates maps a template type name to its renderer. Template data fields
// a renderer doesn't use are ignored.
var templates = map[string]templateFunc{
	domain.TemplateUserRegistration: userRegistrationTemplate,
	domain.TemplateCouponCreated:    couponCreatedTemplate,
	domain.TemplateAccountDisabled:  accountDisabledTemplate,
	domain.TemplateAccountEnabled:   accountEnabledTemplate,
}

const footer = `<hr style="border: 1px solid #eee; margin: 20px 0;">
<p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>`

func wrap(body string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">%s%s</div>`, body, footer)
}

func userRegistrationTemplate(data domain.TemplateData) renderedEmail {
	return renderedEmail{
		Subject: "Welcome to Our Platform!",
		HTML: wrap(fmt.Sprintf(`<h2 style="color: #333;">Welcome %s!</h2>
<p>Thank you for joining our platform. Your account has been successfully created.</p>
<p><strong>Email:</strong> %s</p>
<p>You can now start using our services. If you have any questions, please don't hesitate to contact us.</p>`,
			data.UserName, data.UserEmail)),
		Text: fmt.Sprintf("Welcome %s! Thank you for joining our platform. Your account has been successfully created with email: %s.",
			data.UserName, data.UserEmail),
	}
}

func couponCreatedTemplate(data domain.TemplateData) renderedEmail {
	discount := formatDiscount(data.DiscountValue, data.DiscountType)
	return renderedEmail{
		Subject: "New Coupon Available!",
		HTML: wrap(fmt.Sprintf(`<h2 style="color: #333;">New Coupon Available!</h2>
<div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
<h3 style="color: #28a745; margin-top: 0;">Coupon Code: %s</h3>
<p><strong>Discount:</strong> %s</p>
</div>
<p>Use this coupon code to get a discount on your next purchase!</p>`,
			data.CouponCode, discount)),
		Text: fmt.Sprintf("New Coupon Available! Use code: %s for %s discount.", data.CouponCode, discount),
	}
}

func accountDisabledTemplate(data domain.TemplateData) renderedEmail {
	return renderedEmail{
		Subject: "Account Status Update",
		HTML: wrap(fmt.Sprintf(`<h2 style="color: #dc3545;">Account Status Update</h2>
<p>Dear %s,</p>
<p>Your account has been temporarily disabled by our administrators.</p>
<p>If you believe this is an error or would like to appeal this decision, please contact our support team.</p>`,
			data.UserName)),
		Text: fmt.Sprintf("Dear %s, Your account has been temporarily disabled by our administrators. Please contact support if you believe this is an error.",
			data.UserName),
	}
}

func accountEnabledTemplate(data domain.TemplateData) renderedEmail {
	return renderedEmail{
		Subject: "Account Reactivated",
		HTML: wrap(fmt.Sprintf(`<h2 style="color: #28a745;">Account Reactivated</h2>
<p>Dear %s,</p>
<p>Good news! Your account has been reactivated and you can now access all platform features.</p>
<p>Thank you for your patience.</p>`,
			data.UserName)),
		Text: fmt.Sprintf("Dear %s, Your account has been reactivated and you can now access all platform features.",
			data.UserName),
	}
}

func formatDiscount(value float64, discountType string) string {
	if discountType == domain.DiscountPercentage {
		return fmt.Sprintf("%g%%", value)
	}
	return fmt.Sprintf("%g Credits", value)
}
