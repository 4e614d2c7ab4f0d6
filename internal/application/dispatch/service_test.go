package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/admin-console-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Scan(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if a, _ := args.Get(0).([]domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeMailer records every send and fails the addresses in failFor.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]bool
}

type sentMail struct {
	To, Subject, HTML, Text string
}

func (f *fakeMailer) Send(to, subject, html, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return "", errors.New("relay rejected recipient")
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, HTML: html, Text: text})
	return fmt.Sprintf("<msg-%d@test>", len(f.sent)), nil
}

// --- helpers ---

func testAccounts() []domain.Account {
	return []domain.Account{
		{AccountID: "u1", Name: "Ana", Email: "ana@example.com"},
		{AccountID: "u2", Name: "Bram", Email: "bram@example.com", Disabled: true},
		{AccountID: "u3", Name: "Root", Email: "root@example.com", IsAdmin: true},
		{AccountID: "u4", Name: "Cleo", Email: "cleo@example.com", Role: domain.RoleAdmin},
		{AccountID: "u5", Name: "NoMail"},
	}
}

func selector(group string, ids ...string) *domain.TargetSelector {
	return &domain.TargetSelector{Group: group, AccountIDs: ids}
}

// --- Send (single) ---

func TestSend_MissingRecipient(t *testing.T) {
	svc := NewService(&mockAccountStore{}, &fakeMailer{}, 2)
	_, err := svc.Send(context.Background(), domain.SendEmailRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSend_NoContent(t *testing.T) {
	svc := NewService(&mockAccountStore{}, &fakeMailer{}, 2)
	_, err := svc.Send(context.Background(), domain.SendEmailRequest{To: "ana@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSend_Template_RendersRecipientData(t *testing.T) {
	m := &fakeMailer{}
	svc := NewService(&mockAccountStore{}, m, 2)

	msgID, err := svc.Send(context.Background(), domain.SendEmailRequest{
		To:           "ana@example.com",
		TemplateType: domain.TemplateAccountDisabled,
		TemplateData: domain.TemplateData{UserName: "Ana"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Account Status Update", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].HTML, "Dear Ana,")
}

func TestSend_CouponTemplate_FormatsDiscountByKind(t *testing.T) {
	m := &fakeMailer{}
	svc := NewService(&mockAccountStore{}, m, 2)

	_, err := svc.Send(context.Background(), domain.SendEmailRequest{
		To:           "ana@example.com",
		TemplateType: domain.TemplateCouponCreated,
		TemplateData: domain.TemplateData{CouponCode: "SAVE20", DiscountValue: 20, DiscountType: domain.DiscountPercentage},
	})
	require.NoError(t, err)
	assert.Contains(t, m.sent[0].HTML, "SAVE20")
	assert.Contains(t, m.sent[0].HTML, "20%")

	_, err = svc.Send(context.Background(), domain.SendEmailRequest{
		To:           "ana@example.com",
		TemplateType: domain.TemplateCouponCreated,
		TemplateData: domain.TemplateData{CouponCode: "FLAT50", DiscountValue: 50, DiscountType: domain.DiscountFixed},
	})
	require.NoError(t, err)
	assert.Contains(t, m.sent[1].Text, "50 Credits")
}

func TestSend_CustomContent_PassesThroughVerbatim(t *testing.T) {
	m := &fakeMailer{}
	svc := NewService(&mockAccountStore{}, m, 2)

	_, err := svc.Send(context.Background(), domain.SendEmailRequest{
		To:            "ana@example.com",
		CustomSubject: "Hi",
		CustomHTML:    "Hello {userName}",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello {userName}", m.sent[0].HTML)
}

// --- SendBulk ---

func TestSendBulk_ExcludesAdminsAndMissingEmails(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(testAccounts(), nil)
	m := &fakeMailer{}
	svc := NewService(as, m, 3)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:  selector(domain.TargetAll),
		TemplateType: domain.TemplateUserRegistration,
	})
	require.NoError(t, err)
	// u3 (isAdmin), u4 (role admin) and u5 (no email) are excluded.
	assert.Equal(t, 2, batch.Total)
	assert.Len(t, batch.Successful, 2)
	assert.Empty(t, batch.Failed)
	as.AssertExpectations(t)
}

func TestSendBulk_GroupSelection(t *testing.T) {
	for _, tc := range []struct {
		group string
		want  []string
	}{
		{domain.TargetActive, []string{"ana@example.com"}},
		{domain.TargetDisabled, []string{"bram@example.com"}},
	} {
		as := &mockAccountStore{}
		as.On("Scan", mock.Anything).Return(testAccounts(), nil)
		m := &fakeMailer{}
		svc := NewService(as, m, 1)

		batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
			TargetUsers:  selector(tc.group),
			TemplateType: domain.TemplateUserRegistration,
		})
		require.NoError(t, err, tc.group)
		require.Len(t, batch.Successful, len(tc.want), tc.group)
		assert.Equal(t, tc.want[0], batch.Successful[0].Email)
	}
}

func TestSendBulk_ExplicitIDSelection(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(testAccounts(), nil)
	svc := NewService(as, &fakeMailer{}, 2)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:  selector("", "u1", "u2"),
		TemplateType: domain.TemplateUserRegistration,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Total)
}

// Every recipient must land in exactly one partition, whichever subset fails.
func TestSendBulk_ResultCompleteness(t *testing.T) {
	accounts := make([]domain.Account, 20)
	failFor := map[string]bool{}
	for i := range accounts {
		email := fmt.Sprintf("user%02d@example.com", i)
		accounts[i] = domain.Account{AccountID: fmt.Sprintf("u%02d", i), Name: "U", Email: email}
		if i%3 == 0 {
			failFor[email] = true
		}
	}
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(accounts, nil)
	m := &fakeMailer{failFor: failFor}
	svc := NewService(as, m, 4)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:  selector(domain.TargetAll),
		TemplateType: domain.TemplateUserRegistration,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, batch.Total)
	assert.Equal(t, 20, len(batch.Successful)+len(batch.Failed))
	assert.Len(t, batch.Failed, 7)
	for _, f := range batch.Failed {
		assert.Equal(t, "relay rejected recipient", f.Error)
	}
}

func TestSendBulk_TotalRelayOutage_AllFail(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(testAccounts(), nil)
	m := &fakeMailer{failFor: map[string]bool{"ana@example.com": true, "bram@example.com": true}}
	svc := NewService(as, m, 2)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:  selector(domain.TargetAll),
		TemplateType: domain.TemplateUserRegistration,
	})
	require.NoError(t, err)
	assert.Empty(t, batch.Successful)
	assert.Len(t, batch.Failed, 2)
}

// First placeholder occurrence is substituted; the second stays literal.
func TestSendBulk_PlaceholderSubstitution_FirstOccurrenceOnly(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return([]domain.Account{
		{AccountID: "u1", Name: "Ana", Email: "ana@example.com"},
	}, nil)
	m := &fakeMailer{}
	svc := NewService(as, m, 1)

	_, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:   selector(domain.TargetAll),
		CustomSubject: "Hi",
		CustomHTML:    "Hello {userName}, again {userName}",
	})
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Hello Ana, again {userName}", m.sent[0].HTML)
}

func TestSendBulk_PlaceholderDefaultsToUser(t *testing.T) {
	m := &fakeMailer{}
	svc := NewService(&mockAccountStore{}, m, 1)

	_, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		ManualEmails:  []string{"someone@example.com"},
		CustomSubject: "Hi",
		CustomHTML:    "Hello {userName} at {userEmail}",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello User at someone@example.com", m.sent[0].HTML)
}

func TestSendBulk_ManualEmails_WeakValidation(t *testing.T) {
	m := &fakeMailer{}
	svc := NewService(&mockAccountStore{}, m, 2)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		ManualEmails:  []string{" one@example.com ", "not-an-address", "", "two@example.com"},
		CustomSubject: "Hi",
		CustomHTML:    "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Total)
}

// An address reachable both through an account and the manual list gets one
// send, attributed to the account.
func TestSendBulk_CrossGroupDeduplication(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return([]domain.Account{
		{AccountID: "u1", Name: "Ana", Email: "ana@example.com"},
	}, nil)
	m := &fakeMailer{}
	svc := NewService(as, m, 2)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:   selector(domain.TargetAll),
		ManualEmails:  []string{"Ana@Example.com"},
		CustomSubject: "Hi",
		CustomHTML:    "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Total)
	require.Len(t, batch.Successful, 1)
	assert.Equal(t, "u1", batch.Successful[0].AccountID)
}

func TestSendBulk_NoContent_AllRecipientsFail(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(testAccounts(), nil)
	svc := NewService(as, &fakeMailer{}, 2)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers: selector(domain.TargetAll),
	})
	require.NoError(t, err)
	assert.Empty(t, batch.Successful)
	assert.Len(t, batch.Failed, 2)
	assert.Equal(t, "no valid template or custom content", batch.Failed[0].Error)
}

func TestSendBulk_NoTargetSpecification(t *testing.T) {
	svc := NewService(&mockAccountStore{}, &fakeMailer{}, 2)
	_, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSendBulk_NoValidRecipients(t *testing.T) {
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return([]domain.Account{
		{AccountID: "u3", Name: "Root", Email: "root@example.com", IsAdmin: true},
	}, nil)
	svc := NewService(as, &fakeMailer{}, 2)

	_, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:  selector(domain.TargetAll),
		TemplateType: domain.TemplateUserRegistration,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSendBulk_StoreErrorPropagates(t *testing.T) {
	as := &mockAccountStore{}
	scanErr := errors.New("dynamo unavailable")
	as.On("Scan", mock.Anything).Return(nil, scanErr)
	svc := NewService(as, &fakeMailer{}, 2)

	_, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:  selector(domain.TargetAll),
		TemplateType: domain.TemplateUserRegistration,
	})
	assert.Equal(t, scanErr, err)
}

// countingMailer tracks the high-water mark of concurrent sends.
type countingMailer struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (c *countingMailer) Send(to, subject, html, text string) (string, error) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
	}
	c.mu.Unlock()

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
	return "<id@test>", nil
}

func TestSendBulk_ConcurrencyNeverExceedsCap(t *testing.T) {
	accounts := make([]domain.Account, 50)
	for i := range accounts {
		accounts[i] = domain.Account{
			AccountID: fmt.Sprintf("u%02d", i),
			Name:      "U",
			Email:     fmt.Sprintf("user%02d@example.com", i),
		}
	}
	as := &mockAccountStore{}
	as.On("Scan", mock.Anything).Return(accounts, nil)
	m := &countingMailer{}
	svc := NewService(as, m, 3)

	batch, err := svc.SendBulk(context.Background(), domain.BulkEmailRequest{
		TargetUsers:  selector(domain.TargetAll),
		TemplateType: domain.TemplateUserRegistration,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, batch.Total)
	assert.LessOrEqual(t, m.peak, 3)
}
