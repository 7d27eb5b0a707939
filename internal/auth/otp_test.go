package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"whispr/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer captures the last code instead of sending mail.
type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(map[string]string)}
}

func (m *fakeMailer) SendOTP(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *fakeMailer) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

// testClock is a controllable time source shared by the KV and the service.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newOTPFixture() (*OTPService, *fakeMailer, *testClock) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	kv := NewMemoryKV()
	kv.SetClock(clock.Now)
	mailer := newFakeMailer()
	service := NewOTPService(kv, mailer)
	service.SetClock(clock.Now)
	return service, mailer, clock
}

func TestSendAndVerifyOTP(t *testing.T) {
	service, mailer, _ := newOTPFixture()
	ctx := context.Background()

	require.NoError(t, service.Send(ctx, "ada@example.com"))

	code := mailer.lastCode("ada@example.com")
	require.Len(t, code, 6)

	assert.NoError(t, service.Verify(ctx, "ada@example.com", code))

	// The code is single-use.
	err := service.Verify(ctx, "ada@example.com", code)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrOTPExpired))
}

func TestVerifyRejectsBadFormat(t *testing.T) {
	service, _, _ := newOTPFixture()

	for _, code := range []string{"", "12345", "1234567", "12a456", "abcdef"} {
		err := service.Verify(context.Background(), "ada@example.com", code)
		require.Error(t, err, "code %q should be rejected", code)
		assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	}
}

func TestVerifyRejectsMismatch(t *testing.T) {
	service, mailer, _ := newOTPFixture()
	ctx := context.Background()

	require.NoError(t, service.Send(ctx, "ada@example.com"))

	wrong := "000000"
	if mailer.lastCode("ada@example.com") == wrong {
		wrong = "000001"
	}

	err := service.Verify(ctx, "ada@example.com", wrong)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrOTPMismatch))

	// A mismatch does not consume the stored code.
	assert.NoError(t, service.Verify(ctx, "ada@example.com", mailer.lastCode("ada@example.com")))
}

func TestVerifyRejectsExpiredOTP(t *testing.T) {
	service, mailer, clock := newOTPFixture()
	ctx := context.Background()

	require.NoError(t, service.Send(ctx, "ada@example.com"))
	clock.Advance(OTPTTL + time.Second)

	err := service.Verify(ctx, "ada@example.com", mailer.lastCode("ada@example.com"))
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrOTPExpired))
}

func TestResendCooldown(t *testing.T) {
	service, _, clock := newOTPFixture()
	ctx := context.Background()

	require.NoError(t, service.Send(ctx, "ada@example.com"))

	err := service.Send(ctx, "ada@example.com")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrOTPCooldown))

	// Halfway through, still blocked.
	clock.Advance(30 * time.Second)
	err = service.Send(ctx, "ada@example.com")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrOTPCooldown))

	// Past the window, a resend succeeds.
	clock.Advance(31 * time.Second)
	assert.NoError(t, service.Send(ctx, "ada@example.com"))
}

func TestCooldownIsPerEmail(t *testing.T) {
	service, _, _ := newOTPFixture()
	ctx := context.Background()

	require.NoError(t, service.Send(ctx, "ada@example.com"))
	assert.NoError(t, service.Send(ctx, "grace@example.com"))
}
