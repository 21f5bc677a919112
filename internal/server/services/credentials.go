package services

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/models"
)

func serviceDetails(service, suffix string) string {
	if suffix == "" {
		return "service=" + service
	}
	return "service=" + service + ": " + suffix
}

// SaveCredential stores the secret hash for (username, service), replacing
// any previous one. The audit action tells which branch was taken; a
// failure before that point is audited as SAVE_CREDENTIAL.
func (e *AuthEngine) SaveCredential(ctx context.Context, meta RequestMeta, username, service, secret string) (result models.UpsertResult, err error) {
	action := models.ActionSaveCredential
	defer func() {
		e.record(ctx, meta, username, action, err, serviceDetails(service, reason(err)))
		observe("save_credential", err)
	}()

	service, err = normalizeService(service)
	if err != nil {
		return 0, err
	}
	if err := validateSecret(secret); err != nil {
		return 0, err
	}

	hash, err := e.hasher.Hash(secret)
	if err != nil {
		return 0, e.processingError(ctx, "hash secret", err, "username", username, "service", service)
	}

	result, err = e.repomanager.Credentials(e.db).Upsert(ctx, username, service, hash)
	if err != nil {
		return 0, e.storageError(ctx, "upsert credential", err, "username", username, "service", service)
	}

	if result == models.UpsertCreated {
		action = models.ActionCreateCredential
	} else {
		action = models.ActionUpdateCredential
	}
	return result, nil
}

// UpdateCredential replaces the secret of an existing credential only.
func (e *AuthEngine) UpdateCredential(ctx context.Context, meta RequestMeta, username, service, secret string) (err error) {
	defer func() {
		e.record(ctx, meta, username, models.ActionUpdateCredential, err, serviceDetails(service, reason(err)))
		observe("update_credential", err)
	}()

	service, err = normalizeService(service)
	if err != nil {
		return err
	}
	if err := validateSecret(secret); err != nil {
		return err
	}

	hash, err := e.hasher.Hash(secret)
	if err != nil {
		return e.processingError(ctx, "hash secret", err, "username", username, "service", service)
	}

	ok, err := e.repomanager.Credentials(e.db).Update(ctx, username, service, hash)
	if err != nil {
		return e.storageError(ctx, "update credential", err, "username", username, "service", service)
	}
	if !ok {
		return common.ErrNotFound
	}
	return nil
}

// VerifyCredential reports whether secret matches the stored one. An absent
// credential and a mismatch both return false; neither is a failure.
func (e *AuthEngine) VerifyCredential(ctx context.Context, meta RequestMeta, username, service, secret string) (match bool, err error) {
	result := ""
	defer func() {
		details := reason(err)
		if err == nil {
			details = "result=" + result
		}
		e.record(ctx, meta, username, models.ActionVerifyCredential, err, serviceDetails(service, details))
		observe("verify_credential", err)
	}()

	service, err = normalizeService(service)
	if err != nil {
		return false, err
	}
	if err := validateSecret(secret); err != nil {
		return false, err
	}

	cred, err := e.repomanager.Credentials(e.db).Get(ctx, username, service)
	if err != nil {
		return false, e.storageError(ctx, "get credential", err, "username", username, "service", service)
	}
	if cred == nil {
		_, _ = e.hasher.Verify(e.dummyHash, secret)
		result = "absent"
		return false, nil
	}

	match, err = e.hasher.Verify(cred.SecretHash, secret)
	if err != nil {
		return false, e.processingError(ctx, "verify secret", err, "username", username, "service", service)
	}
	if match {
		result = "match"
	} else {
		result = "mismatch"
	}
	return match, nil
}

// DeleteCredential removes a credential; common.ErrNotFound when absent.
func (e *AuthEngine) DeleteCredential(ctx context.Context, meta RequestMeta, username, service string) (err error) {
	defer func() {
		e.record(ctx, meta, username, models.ActionDeleteCredential, err, serviceDetails(service, reason(err)))
		observe("delete_credential", err)
	}()

	service, err = normalizeService(service)
	if err != nil {
		return err
	}

	ok, err := e.repomanager.Credentials(e.db).Delete(ctx, username, service)
	if err != nil {
		return e.storageError(ctx, "delete credential", err, "username", username, "service", service)
	}
	if !ok {
		return common.ErrNotFound
	}
	return nil
}

// ListServices returns the service names stored by username, sorted.
func (e *AuthEngine) ListServices(ctx context.Context, username string) ([]string, error) {
	services, err := e.repomanager.Credentials(e.db).ListServices(ctx, username)
	if err != nil {
		err = e.storageError(ctx, "list services", err, "username", username)
	}
	observe("list_services", err)
	return services, err
}

// GetAuditLog returns the newest audit entries of username, at most
// common.MaxAuditQueryLimit.
func (e *AuthEngine) GetAuditLog(ctx context.Context, username string, limit int) ([]*models.AuditEntry, error) {
	entries, err := e.audit.QueryByUser(ctx, username, limit)
	if err != nil {
		err = e.storageError(ctx, "query audit log", err, "username", username)
		entries = nil
	}
	observe("get_audit_log", err)
	return entries, err
}
