package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/admin-console-api/internal/domain"
)

// Service fans notification emails out to platform accounts and free-form
// addresses. Single-shot and stateless: nothing about a batch is persisted,
// and failed sends are never retried here.
type Service interface {
	Send(ctx context.Context, req domain.SendEmailRequest) (string, error)
	SendBulk(ctx context.Context, req domain.BulkEmailRequest) (*domain.BatchResult, error)
}

type accountStore interface {
	Scan(ctx context.Context) ([]domain.Account, error)
}

type mailer interface {
	Send(to, subject, htmlBody, textBody string) (string, error)
}

type service struct {
	accounts    accountStore
	mailer      mailer
	concurrency int
}

// NewService builds the dispatcher. concurrency caps in-flight relay
// connections per bulk batch; values below 1 collapse to 1.
func NewService(accounts accountStore, m mailer, concurrency int) Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &service{accounts: accounts, mailer: m, concurrency: concurrency}
}

// Send delivers one email. Custom content passes through untouched; only
// bulk sends substitute placeholders.
func (s *service) Send(ctx context.Context, req domain.SendEmailRequest) (string, error) {
	if strings.TrimSpace(req.To) == "" {
		return "", fmt.Errorf("recipient email is required: %w", domain.ErrBadRequest)
	}
	content, err := resolveContent(req.TemplateType, req.TemplateData, req.To,
		req.CustomSubject, req.CustomHTML, req.CustomText)
	if err != nil {
		return "", err
	}
	return s.mailer.Send(req.To, content.Subject, content.HTML, content.Text)
}

// recipient is one resolved destination within a batch.
type recipient struct {
	AccountID string
	Name      string
	Email     string
}

// SendBulk resolves the recipient set, fans out one send per recipient over
// a bounded worker pool, and aggregates per-recipient outcomes. A single
// failed send never aborts the batch; len(Successful)+len(Failed) == Total
// always holds.
func (s *service) SendBulk(ctx context.Context, req domain.BulkEmailRequest) (*domain.BatchResult, error) {
	recipients, err := s.resolveRecipients(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no valid users found to send emails to: %w", domain.ErrBadRequest)
	}

	type outcome struct {
		result domain.DispatchResult
		ok     bool
	}

	jobs := make(chan recipient)
	outcomes := make(chan outcome)

	workers := s.concurrency
	if workers > len(recipients) {
		workers = len(recipients)
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rcpt := range jobs {
				res, ok := s.sendOne(ctx, req, rcpt)
				outcomes <- outcome{result: res, ok: ok}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, rcpt := range recipients {
			jobs <- rcpt
		}
	}()
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	batch := &domain.BatchResult{
		Successful: []domain.DispatchResult{},
		Failed:     []domain.DispatchResult{},
		Total:      len(recipients),
	}
	for o := range outcomes {
		if o.ok {
			batch.Successful = append(batch.Successful, o.result)
		} else {
			batch.Failed = append(batch.Failed, o.result)
		}
	}
	return batch, nil
}

// resolveRecipients builds the deduplicated union of account-derived and
// free-form recipients. Administrator accounts and accounts without an email
// are excluded; free-form addresses only need to contain an '@'. When an
// address appears in both groups the account entry wins, since it carries
// the display name templates substitute.
func (s *service) resolveRecipients(ctx context.Context, req domain.BulkEmailRequest) ([]recipient, error) {
	if req.TargetUsers == nil && len(req.ManualEmails) == 0 {
		return nil, fmt.Errorf("target users specification is required: %w", domain.ErrBadRequest)
	}

	var recipients []recipient
	seen := map[string]bool{}

	if req.TargetUsers != nil {
		accounts, err := s.accounts.Scan(ctx)
		if err != nil {
			return nil, err
		}
		var wanted map[string]bool
		if len(req.TargetUsers.AccountIDs) > 0 || req.TargetUsers.Group == "" {
			wanted = make(map[string]bool, len(req.TargetUsers.AccountIDs))
			for _, id := range req.TargetUsers.AccountIDs {
				wanted[id] = true
			}
		}
		for _, a := range accounts {
			if a.IsAdministrator() || a.Email == "" {
				continue
			}
			switch req.TargetUsers.Group {
			case domain.TargetActive:
				if a.Disabled {
					continue
				}
			case domain.TargetDisabled:
				if !a.Disabled {
					continue
				}
			case domain.TargetAll:
			default:
				if !wanted[a.AccountID] {
					continue
				}
			}
			key := strings.ToLower(a.Email)
			if seen[key] {
				continue
			}
			seen[key] = true
			recipients = append(recipients, recipient{AccountID: a.AccountID, Name: a.Name, Email: a.Email})
		}
	}

	for _, raw := range req.ManualEmails {
		email := strings.TrimSpace(raw)
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true
		recipients = append(recipients, recipient{Email: email})
	}

	return recipients, nil
}

func (s *service) sendOne(ctx context.Context, req domain.BulkEmailRequest, rcpt recipient) (domain.DispatchResult, bool) {
	res := domain.DispatchResult{AccountID: rcpt.AccountID, Email: rcpt.Email}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res, false
	}

	content, err := resolveBulkContent(req, rcpt)
	if err != nil {
		res.Error = err.Error()
		return res, false
	}

	messageID, err := s.mailer.Send(rcpt.Email, content.Subject, content.HTML, content.Text)
	if err != nil {
		res.Error = err.Error()
		return res, false
	}
	res.MessageID = messageID
	return res, true
}

// resolveBulkContent renders per-recipient content: a registered template
// with recipient-specific data, or custom subject/HTML with placeholder
// substitution. Placeholders are replaced first-occurrence only; repeated
// occurrences stay literal.
func resolveBulkContent(req domain.BulkEmailRequest, rcpt recipient) (renderedEmail, error) {
	name := rcpt.Name
	if name == "" {
		name = "User"
	}

	if tmpl, ok := templates[req.TemplateType]; ok {
		data := req.TemplateData
		data.UserName = name
		data.UserEmail = rcpt.Email
		return tmpl(data), nil
	}

	if req.CustomSubject != "" && req.CustomHTML != "" {
		return renderedEmail{
			Subject: req.CustomSubject,
			HTML:    substitute(req.CustomHTML, name, rcpt.Email),
			Text:    substitute(req.CustomText, name, rcpt.Email),
		}, nil
	}

	return renderedEmail{}, fmt.Errorf("no valid template or custom content")
}

func substitute(s, name, email string) string {
	s = strings.Replace(s, "{userName}", name, 1)
	s = strings.Replace(s, "{userEmail}", email, 1)
	return s
}

// resolveContent handles the single-send path: template data defaults to the
// recipient address, custom content is passed through verbatim.
func resolveContent(templateType string, data domain.TemplateData, to, subject, html, text string) (renderedEmail, error) {
	if tmpl, ok := templates[templateType]; ok {
		if data.UserName == "" {
			data.UserName = "User"
		}
		if data.UserEmail == "" {
			data.UserEmail = to
		}
		return tmpl(data), nil
	}
	if subject != "" && html != "" {
		return renderedEmail{Subject: subject, HTML: html, Text: text}, nil
	}
	return renderedEmail{}, fmt.Errorf("either templateType or custom email content is required: %w", domain.ErrBadRequest)
}
