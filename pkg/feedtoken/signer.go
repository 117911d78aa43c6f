package feedtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Feed subject kinds.
const (
	KindInstructor = "instructor"
	KindStudent    = "student"
)

var (
	ErrMalformed = errors.New("malformed feed token")
	ErrSignature = errors.New("invalid feed token signature")
	ErrExpired   = errors.New("feed token expired")
)

// Signer issues URL-safe tokens that grant read access to one calendar feed.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer. A non-positive ttl defaults to 30 days.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token for the feed of subjectID and its expiry.
func (s *Signer) Generate(kind, subjectID string) (string, time.Time, error) {
	if kind != KindInstructor && kind != KindStudent {
		return "", time.Time{}, fmt.Errorf("unknown feed kind %q", kind)
	}
	if subjectID == "" {
		return "", time.Time{}, errors.New("subject id required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	subject := base64.RawURLEncoding.EncodeToString([]byte(subjectID))
	return strings.Join([]string{kind, exp, subject, s.sign(kind, exp, subject)}, "."), expiresAt, nil
}

// Parse verifies token and returns the feed it grants.
func (s *Signer) Parse(token string) (kind, subjectID string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", ErrMalformed
	}
	kind, exp, subject, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(kind, exp, subject)), []byte(signature)) {
		return "", "", ErrSignature
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", ErrMalformed
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return "", "", ErrExpired
	}
	raw, err := base64.RawURLEncoding.DecodeString(subject)
	if err != nil {
		return "", "", ErrMalformed
	}
	return kind, string(raw), nil
}

func (s *Signer) sign(kind, exp, subject string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(kind + "|" + exp + "|" + subject))
	return hex.EncodeToString(mac.Sum(nil))
}
