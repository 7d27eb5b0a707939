// internal/auth/otp.go
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"whispr/internal/utils"
)

const (
	// OTPTTL is how long a stored code stays valid.
	OTPTTL = 5 * time.Minute

	// ResendCooldown is the minimum interval between OTP emails to the same
	// address.
	ResendCooldown = 60 * time.Second
)

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// ValidOTPFormat reports whether code is exactly six digits.
func ValidOTPFormat(code string) bool {
	return otpPattern.MatchString(code)
}

// Mailer delivers an OTP to an email address.
type Mailer interface {
	SendOTP(email, code string) error
}

// OTPService issues and verifies single-use login codes backed by a KV store.
type OTPService struct {
	kv     KV
	mailer Mailer
	now    func() time.Time
}

func NewOTPService(kv KV, mailer Mailer) *OTPService {
	return &OTPService{
		kv:     kv,
		mailer: mailer,
		now:    time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *OTPService) SetClock(now func() time.Time) {
	s.now = now
}

func otpKey(email string) string      { return "otp:" + email }
func cooldownKey(email string) string { return "cooldown:" + email }

// Send generates a fresh six-digit code, emails it, and stores it for OTPTTL.
// A resend inside the cooldown window is rejected with the remaining seconds.
func (s *OTPService) Send(ctx context.Context, email string) error {
	lastSent, ok, err := s.kv.Get(ctx, cooldownKey(email))
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to check OTP cooldown", err)
	}
	if ok {
		if millis, err := strconv.ParseInt(lastSent, 10, 64); err == nil {
			remaining := s.remainingCooldown(millis)
			if remaining > 0 {
				return utils.NewOTPCooldownError(remaining)
			}
		}
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %v", err)
	}

	if err := s.mailer.SendOTP(email, code); err != nil {
		return fmt.Errorf("failed to send OTP email: %v", err)
	}
	log.Printf("OTP sent to %s", email)

	if err := s.kv.SetEx(ctx, otpKey(email), code, OTPTTL); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to store OTP", err)
	}

	millis := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.kv.SetEx(ctx, cooldownKey(email), millis, ResendCooldown); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to store OTP cooldown", err)
	}

	return nil
}

// Verify checks a submitted code against the stored one. A successful
// verification consumes the code.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	if !ValidOTPFormat(code) {
		return utils.NewAppError(utils.ErrInvalidInput, "OTP must be 6 digits", nil)
	}

	stored, ok, err := s.kv.Get(ctx, otpKey(email))
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to look up OTP", err)
	}
	if !ok {
		return utils.NewAppError(utils.ErrOTPExpired, "OTP has expired or is invalid.", nil)
	}

	if stored != code {
		return utils.NewAppError(utils.ErrOTPMismatch, "Invalid OTP.", nil)
	}

	if err := s.kv.Del(ctx, otpKey(email)); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to consume OTP", err)
	}
	return nil
}

func (s *OTPService) remainingCooldown(lastSentMillis int64) int {
	elapsed := s.now().UnixMilli() - lastSentMillis
	remaining := int(ResendCooldown.Seconds()) - int(elapsed/1000)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
