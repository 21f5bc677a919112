package httpapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/labstack/echo/v4"
)

const defaultAuditLimit = 50

// Handler exposes the vault over JSON.
type Handler struct {
	vault services.Vault
}

func NewHandler(vault services.Vault) *Handler {
	return &Handler{vault: vault}
}

// serviceParam returns the :service path segment. Echo matches on the raw
// path when the request carries escapes such as %2F and leaves the value
// escaped in that case.
func serviceParam(c echo.Context) (string, error) {
	service := c.Param("service")
	if c.Request().URL.RawPath == "" {
		return service, nil
	}
	unescaped, err := url.PathUnescape(service)
	if err != nil {
		return "", fmt.Errorf("%w: malformed service name", common.ErrValidation)
	}
	return unescaped, nil
}

// bind decodes and size-checks the request body. Bind failures are
// reported as validation errors.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return common.ErrValidation
	}
	return c.Validate(req)
}

// Register handles POST /register.
func (h *Handler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.vault.Register(c.Request().Context(), requestMeta(c), req.Username, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, statusResponse{Status: statusSuccess, Message: "account created"})
}

// Login handles POST /login.
func (h *Handler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.vault.Login(c.Request().Context(), requestMeta(c), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTokenResponse(pair))
}

// Refresh handles POST /refresh.
func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.vault.Refresh(c.Request().Context(), requestMeta(c), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTokenResponse(pair))
}

// Logout handles POST /logout.
func (h *Handler) Logout(c echo.Context) error {
	username, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.vault.Logout(c.Request().Context(), requestMeta(c), username); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: statusSuccess, Message: "logged out"})
}

// SaveCredential handles POST /credentials.
func (h *Handler) SaveCredential(c echo.Context) error {
	username, err := currentUser(c)
	if err != nil {
		return err
	}
	var req saveCredentialRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.vault.SaveCredential(c.Request().Context(), requestMeta(c), username, req.Service, req.Secret)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saveCredentialResponse{
		Status:  statusSuccess,
		Service: services.ServiceName(req.Service),
		Result:  result.String(),
	})
}

// UpdateCredential handles PUT /credentials/:service.
func (h *Handler) UpdateCredential(c echo.Context) error {
	username, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updateCredentialRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	service, err := serviceParam(c)
	if err != nil {
		return err
	}
	if err := h.vault.UpdateCredential(c.Request().Context(), requestMeta(c), username, service, req.Secret); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: statusSuccess, Message: "credential updated"})
}

// VerifyCredential handles POST /credentials/verify.
func (h *Handler) VerifyCredential(c echo.Context) error {
	username, err := currentUser(c)
	if err != nil {
		return err
	}
	var req saveCredentialRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ok, err := h.vault.VerifyCredential(c.Request().Context(), requestMeta(c), username, req.Service, req.Secret)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyResponse{Status: statusSuccess, Valid: ok})
}

// ListServices handles GET /credentials.
func (h *Handler) ListServices(c echo.Context) error {
	username, err := currentUser(c)
	if err != nil {
		return err
	}

	list, err := h.vault.ListServices(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, servicesResponse{Status: statusSuccess, Services: list})
}

// DeleteCredential handles DELETE /credentials/:service.
func (h *Handler) DeleteCredential(c echo.Context) error {
	username, err := currentUser(c)
	if err != nil {
		return err
	}

	service, err := serviceParam(c)
	if err != nil {
		return err
	}
	if err := h.vault.DeleteCredential(c.Request().Context(), requestMeta(c), username, service); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: statusSuccess, Message: "credential deleted"})
}

// AuditLog handles GET /audit-log?limit=N.
func (h *Handler) AuditLog(c echo.Context) error {
	username, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := defaultAuditLimit
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return common.ErrValidation
	}

	entries, err := h.vault.GetAuditLog(c.Request().Context(), username, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, auditLogResponse{Status: statusSuccess, Entries: entries})
}
