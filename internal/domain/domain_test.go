package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAccountType(t *testing.T) {
	tests := []struct {
		name    string
		loginID string
		want    AccountType
	}{
		{name: "virtual trading company", loginID: "VRTC1234567", want: AccountTypeDemo},
		{name: "virtual gaming", loginID: "VRTG7654321", want: AccountTypeDemo},
		{name: "real money", loginID: "CR900001", want: AccountTypeReal},
		{name: "lowercase prefix is not demo", loginID: "vrtc1", want: AccountTypeReal},
		{name: "empty", loginID: "", want: AccountTypeReal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAccountType(tt.loginID))
		})
	}
}

func TestAccountTypeLabel(t *testing.T) {
	assert.Equal(t, "Demo", AccountTypeDemo.Label())
	assert.Equal(t, "Real", AccountTypeReal.Label())
	assert.Equal(t, "other", AccountType("other").Label())
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty stays empty", token: "", want: ""},
		{name: "short token fully hidden", token: "abcdefg", want: "…"},
		{name: "long token keeps edges", token: "a1-AbCdEfGhIjK", want: "a1-A…IjK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskToken(tt.token))
		})
	}
}

func TestCopierIDForTokenIsStableAndTrimmed(t *testing.T) {
	id := CopierIDForToken("a1-token-value")

	require.Len(t, string(id), 12)
	assert.Equal(t, id, CopierIDForToken("  a1-token-value\n"))
	assert.NotEqual(t, id, CopierIDForToken("a1-other-value"))
}

func TestServerErrorMessage(t *testing.T) {
	assert.Equal(t, "Token invalid", (&ServerError{Message: "Token invalid"}).Error())
	assert.Equal(t, "Token invalid", (&ServerError{Code: "InvalidToken", Message: "Token invalid"}).Error())
	assert.Equal(t, "InvalidToken", (&ServerError{Code: "InvalidToken"}).Error())
}

func TestServerErrorFallsBackToOperationText(t *testing.T) {
	assert.Equal(t, "Authorization failed", (&ServerError{Op: OpAuthorize}).Error())
	assert.Equal(t, "Copy start error", (&ServerError{Op: OpCopyStart}).Error())
	assert.Equal(t, "Copy stop error", (&ServerError{Op: OpCopyStop}).Error())
	assert.Equal(t, "Failed to update trader settings", (&ServerError{Op: OpSetSettings}).Error())
	assert.Equal(t, "Request failed", (&ServerError{}).Error())
}

func TestOutcomeFailed(t *testing.T) {
	assert.True(t, Outcome{Status: CopierStatusError}.Failed())
	assert.False(t, Outcome{Status: CopierStatusCopying}.Failed())
}
