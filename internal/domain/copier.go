package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

type CopierID string

type CopierStatus string

const (
	CopierStatusIdle    CopierStatus = "idle"
	CopierStatusCopying CopierStatus = "copying"
	CopierStatusError   CopierStatus = "error"
)

type Copier struct {
	ID        CopierID
	Label     string
	SecretRef string
	AddedAt   time.Time
}

// Session is the persisted "last used" state: the token offered by default
// on the next invocation.
type Session struct {
	SavedTokenRef   string
	SavedTokenLabel string
	UpdatedAt       time.Time
}

func NormalizeToken(raw string) string {
	return strings.TrimSpace(raw)
}

// CopierIDForToken derives a stable identifier from the token value so the
// same token is never stored twice.
func CopierIDForToken(token string) CopierID {
	sum := sha256.Sum256([]byte(NormalizeToken(token)))
	return CopierID(hex.EncodeToString(sum[:])[:12])
}

// MaskToken keeps the first four and last three characters of a credential.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 7 {
		return "…"
	}

	return token[:4] + "…" + token[len(token)-3:]
}
