package utils

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MaxOTPAttempts is the number of verify attempts allowed per issued OTP
const MaxOTPAttempts = 5

var (
	// ErrOTPInvalid is returned when the submitted code does not match
	ErrOTPInvalid = errors.New("invalid OTP")
	// ErrOTPExpired is returned when no live code exists for the email
	ErrOTPExpired = errors.New("OTP expired or not requested")
	// ErrOTPAttempts is returned once the attempt budget is spent; the code is discarded
	ErrOTPAttempts = errors.New("too many OTP attempts")
	// ErrTokenInvalid is returned for unknown, expired or already used reset tokens
	ErrTokenInvalid = errors.New("invalid or expired reset token")
)

// OTPStore keeps one-time codes and one-shot reset tokens
type OTPStore interface {
	// SaveOTP replaces any pending code for email and resets its attempts
	SaveOTP(ctx context.Context, email, code string, ttl time.Duration) error
	// VerifyOTP consumes the code for email when it matches
	VerifyOTP(ctx context.Context, email, code string) error
	SaveToken(ctx context.Context, token, email string, ttl time.Duration) error
	// ConsumeToken returns the email a token was issued for and deletes it
	ConsumeToken(ctx context.Context, token string) (string, error)
}

// GenerateOTP returns a random 6-digit code
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NewResetToken returns a fresh opaque reset token
func NewResetToken() string {
	return uuid.NewString()
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// RedisOTPStore keeps codes in hashes "otp:email:<email>" and reset tokens
// in keys "reset:token:<token>", both expiring with their TTL.
type RedisOTPStore struct {
	rdb redis.Cmdable
}

// NewRedisOTPStore wraps a Redis client
func NewRedisOTPStore(rdb redis.Cmdable) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb}
}

// countAttempt reads the code and bumps the attempt counter in one step, so
// an expiring key is never recreated without its TTL
var countAttempt = redis.NewScript(`
local code = redis.call("HGET", KEYS[1], "code")
if not code then
	return false
end
return {code, redis.call("HINCRBY", KEYS[1], "attempts", 1)}
`)

func otpKey(email string) string   { return "otp:email:" + email }
func resetKey(token string) string { return "reset:token:" + token }

func (s *RedisOTPStore) SaveOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	key := otpKey(email)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "code", code, "attempts", 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) VerifyOTP(ctx context.Context, email, code string) error {
	key := otpKey(email)
	res, err := countAttempt.Run(ctx, s.rdb, []string{key}).Slice()
	if err == redis.Nil {
		return ErrOTPExpired
	} else if err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if len(res) != 2 {
		return fmt.Errorf("count otp attempt: unexpected reply %v", res)
	}
	stored, _ := res[0].(string)
	attempts, _ := res[1].(int64)
	if attempts > MaxOTPAttempts {
		_ = s.rdb.Del(ctx, key).Err()
		return ErrOTPAttempts
	}
	if !codesEqual(stored, code) {
		return ErrOTPInvalid
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) SaveToken(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, resetKey(token), email, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) ConsumeToken(ctx context.Context, token string) (string, error) {
	email, err := s.rdb.GetDel(ctx, resetKey(token)).Result()
	if err == redis.Nil {
		return "", ErrTokenInvalid
	} else if err != nil {
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return email, nil
}

type pendingOTP struct {
	code     string
	attempts int
	expires  time.Time
}

type pendingToken struct {
	email   string
	expires time.Time
}

// MemoryOTPStore is an in-process OTPStore used when Redis is not configured
type MemoryOTPStore struct {
	mu     sync.Mutex
	codes  map[string]*pendingOTP
	tokens map[string]pendingToken
	now    func() time.Time
}

// NewMemoryOTPStore creates an empty MemoryOTPStore
func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		codes:  map[string]*pendingOTP{},
		tokens: map[string]pendingToken{},
		now:    time.Now,
	}
}

func (s *MemoryOTPStore) SaveOTP(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = &pendingOTP{code: code, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryOTPStore) VerifyOTP(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.codes[email]
	if !ok || !s.now().Before(p.expires) {
		delete(s.codes, email)
		return ErrOTPExpired
	}
	p.attempts++
	if p.attempts > MaxOTPAttempts {
		delete(s.codes, email)
		return ErrOTPAttempts
	}
	if !codesEqual(p.code, code) {
		return ErrOTPInvalid
	}
	delete(s.codes, email)
	return nil
}

func (s *MemoryOTPStore) SaveToken(_ context.Context, token, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = pendingToken{email: email, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryOTPStore) ConsumeToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	delete(s.tokens, token)
	if !ok || !s.now().Before(t.expires) {
		return "", ErrTokenInvalid
	}
	return t.email, nil
}
