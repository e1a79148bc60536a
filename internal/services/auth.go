package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"github.com/authgate/api/internal/models"
	"github.com/authgate/api/internal/notify"
	"github.com/authgate/api/internal/store"
	"github.com/authgate/api/pkg/logger"
	"github.com/authgate/api/pkg/utils"
	"gorm.io/gorm"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
)

const (
	otpMin = 100000
	otpMax = 999999

	minPasswordLength = 6
	maxPasswordLength = 128
)

// AuthService owns the two-phase registration protocol and login. The stores
// underneath are dumb persistence; every business rule lives here.
type AuthService struct {
	users    *store.UserStore
	otps     *store.OtpStore
	notifier notify.Notifier
	otpTTL   time.Duration
}

func NewAuthService(users *store.UserStore, otps *store.OtpStore, notifier notify.Notifier, otpTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		otps:     otps,
		notifier: notifier,
		otpTTL:   otpTTL,
	}
}

// RequestOTP issues a fresh challenge for an unregistered identifier and hands
// the code to the notifier. Any previous challenge for the identifier becomes
// unusable. Delivery is fire-and-forget: its outcome never reaches the caller.
func (s *AuthService) RequestOTP(identifier string) (string, error) {
	if err := validateIdentifier(identifier); err != nil {
		return "", err
	}

	exists, err := s.users.Exists(identifier)
	if err != nil {
		return "", wrapErr(KindStorageUnavailable, "failed checking existing account", err)
	}
	if exists {
		return "", authErr(KindAlreadyRegistered, "account already exists, please login")
	}

	if purged, err := s.otps.PurgeExpired(); err != nil {
		logger.Error("otp_purge_failed", err, nil)
	} else if purged > 0 {
		logger.Info("otp_purged_expired", map[string]interface{}{"count": purged})
	}

	code, err := generateOTP()
	if err != nil {
		return "", wrapErr(KindStorageUnavailable, "failed generating OTP", err)
	}

	otpHash, err := utils.HashSecret(code)
	if err != nil {
		return "", wrapErr(KindStorageUnavailable, "failed hashing OTP", err)
	}

	if err := s.otps.Put(identifier, otpHash, s.otpTTL); err != nil {
		return "", wrapErr(KindStorageUnavailable, "failed storing OTP challenge", err)
	}

	logger.Info("otp_issued", map[string]interface{}{
		"identifier":     identifier,
		"kind":           string(models.KindOfIdentifier(identifier)),
		"expiry_minutes": int(s.otpTTL.Minutes()),
	})

	go func() {
		_ = s.notifier.Deliver(context.Background(), identifier, code)
	}()

	return fmt.Sprintf("OTP sent to %s", identifier), nil
}

// VerifyAndCreate consumes a challenge and creates the account. A wrong code
// and a missing or expired challenge produce the identical error so callers
// cannot probe which identifiers have pending registrations.
func (s *AuthService) VerifyAndCreate(identifier, otp, password string) (string, error) {
	if identifier == "" || otp == "" || password == "" {
		return "", authErr(KindMissingInput, "identifier, OTP and password are required")
	}
	if len(password) < minPasswordLength {
		return "", authErr(KindWeakPassword, "password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return "", authErr(KindWeakPassword, "password must be less than 128 characters")
	}

	storedHash, err := s.otps.Get(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", authErr(KindInvalidOrExpiredOtp, "invalid or expired OTP")
		}
		return "", wrapErr(KindStorageUnavailable, "failed loading OTP challenge", err)
	}

	if !utils.CheckSecret(otp, storedHash) {
		logger.Warn("otp_verification_failed", map[string]interface{}{"identifier": identifier})
		return "", authErr(KindInvalidOrExpiredOtp, "invalid or expired OTP")
	}

	// Single-use: the challenge is gone before the account insert is
	// attempted, so the same code can never be replayed.
	if err := s.otps.Delete(identifier); err != nil {
		return "", wrapErr(KindStorageUnavailable, "failed consuming OTP challenge", err)
	}

	exists, err := s.users.Exists(identifier)
	if err != nil {
		return "", wrapErr(KindStorageUnavailable, "failed checking existing account", err)
	}
	if exists {
		return "", authErr(KindAlreadyRegistered, "account already exists")
	}

	passwordHash, err := utils.HashSecret(password)
	if err != nil {
		return "", wrapErr(KindAccountCreationFailed, "failed to create account", err)
	}

	user, err := s.users.Create(identifier, passwordHash)
	if err != nil {
		// Includes losing the uniqueness race against a concurrent creator.
		return "", wrapErr(KindAccountCreationFailed, "failed to create account", err)
	}

	logger.InfoWithUser(user.ID.String(), "account_created", map[string]interface{}{
		"identifier": identifier,
		"kind":       string(models.KindOfIdentifier(identifier)),
	})

	return "account created successfully, please login", nil
}

// Login authenticates an identifier/password pair. An unknown identifier and a
// wrong password are deliberately indistinguishable.
func (s *AuthService) Login(identifier, password string) (*models.User, error) {
	if identifier == "" || password == "" {
		return nil, authErr(KindMissingInput, "identifier and password are required")
	}

	user, err := s.users.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("login_failed_unknown_identifier", map[string]interface{}{"identifier": identifier})
			return nil, authErr(KindInvalidCredentials, "invalid identifier or password")
		}
		return nil, wrapErr(KindStorageUnavailable, "failed loading account", err)
	}

	if !utils.CheckSecret(password, user.PasswordHash) {
		logger.WarnWithUser(user.ID.String(), "login_failed_invalid_password", map[string]interface{}{
			"identifier": identifier,
		})
		return nil, authErr(KindInvalidCredentials, "invalid identifier or password")
	}

	// Unreachable today: VerifyAndCreate always sets verified. Kept so an
	// alternate provisioning path cannot silently skip ownership proof.
	if !user.Verified {
		return nil, authErr(KindAccountNotVerified, "account not verified")
	}

	logger.InfoWithUser(user.ID.String(), "login_success", map[string]interface{}{
		"identifier": identifier,
	})

	return user, nil
}

func validateIdentifier(identifier string) *AuthError {
	if identifier == "" {
		return authErr(KindMissingInput, "phone number or email required")
	}
	switch models.KindOfIdentifier(identifier) {
	case models.IdentifierEmail:
		if !emailPattern.MatchString(identifier) {
			return authErr(KindInvalidIdentifier, "invalid email format")
		}
	default:
		if !phonePattern.MatchString(identifier) {
			return authErr(KindInvalidIdentifier, "phone number must be 10-15 digits (optional + prefix)")
		}
	}
	return nil
}

// generateOTP draws a uniformly random 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
