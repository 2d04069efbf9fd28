package domain

import (
	"strings"
	"time"
)

type AccountType string

const (
	AccountTypeDemo AccountType = "demo"
	AccountTypeReal AccountType = "real"
)

var demoLoginPrefixes = []string{"VRTC", "VRTG"}

// DetectAccountType classifies a login id. Virtual (demo) accounts carry a
// VRTC or VRTG prefix, everything else is treated as real money.
func DetectAccountType(loginID string) AccountType {
	for _, prefix := range demoLoginPrefixes {
		if strings.HasPrefix(loginID, prefix) {
			return AccountTypeDemo
		}
	}

	return AccountTypeReal
}

func (t AccountType) Label() string {
	switch t {
	case AccountTypeDemo:
		return "Demo"
	case AccountTypeReal:
		return "Real"
	default:
		return string(t)
	}
}

type Role string

const (
	RoleTrader  Role = "trader"
	RoleCopier  Role = "copier"
	RoleSession Role = "session"
)

type Authorization struct {
	Role        Role
	LoginID     string
	AccountType AccountType
}

// LoginRecord is one entry of the login journal. Token holds the masked form only.
type LoginRecord struct {
	LoginID     string
	AccountType AccountType
	Role        Role
	Token       string
	At          time.Time
}
