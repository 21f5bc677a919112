package httpapi

import (
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/models"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"max=256"`
	Password string `json:"password" validate:"max=4096"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"max=8192"`
}

type saveCredentialRequest struct {
	Service string `json:"service" validate:"max=512"`
	Secret  string `json:"secret" validate:"max=4096"`
}

type updateCredentialRequest struct {
	Secret string `json:"secret" validate:"max=4096"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type tokenResponse struct {
	Status           string    `json:"status"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func newTokenResponse(p *auth.TokenPair) tokenResponse {
	return tokenResponse{
		Status:           statusSuccess,
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        common.BearerScheme,
		ExpiresAt:        p.AccessExpiresAt.UTC(),
		RefreshExpiresAt: p.RefreshExpiresAt.UTC(),
	}
}

type saveCredentialResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Result  string `json:"result"`
}

type verifyResponse struct {
	Status string `json:"status"`
	Valid  bool   `json:"valid"`
}

type servicesResponse struct {
	Status   string   `json:"status"`
	Services []string `json:"services"`
}

type auditLogResponse struct {
	Status  string               `json:"status"`
	Entries []*models.AuditEntry `json:"entries"`
}
