package cli

import (
	"context"
	"fmt"
)

func (a *App) promptCredentials() (string, []byte, error) {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword(a.reader, a.out, "Enter password")
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register prompts for a username and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.promptCredentials()
	if err != nil {
		return a.report(err)
	}
	defer wipe(password)

	if _, err := a.call(ctx, "Register", map[string]any{"username": userName, "password": string(password)}); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login authenticates and keeps the token pair for later commands.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.promptCredentials()
	if err != nil {
		return a.report(err)
	}
	defer wipe(password)

	out, err := a.call(ctx, "Login", map[string]any{"username": userName, "password": string(password)})
	if err != nil {
		return a.report(err)
	}

	a.userName = userName
	a.setTokens(out)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout tells the server and forgets the tokens either way.
func (a *App) Logout(ctx context.Context) error {
	_, err := a.call(ctx, "Logout", nil)
	a.userName, a.accessToken, a.refreshToken = "", "", ""
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) promptServiceSecret() (string, []byte, error) {
	service, err := GetSimpleText(a.reader, "Enter service", a.out)
	if err != nil {
		return "", nil, err
	}
	secret, err := GetPassword(a.reader, a.out, "Enter secret")
	if err != nil {
		return "", nil, err
	}
	return service, secret, nil
}

// Save stores or replaces the secret of a service.
func (a *App) Save(ctx context.Context) error {
	service, secret, err := a.promptServiceSecret()
	if err != nil {
		return a.report(err)
	}
	defer wipe(secret)

	out, err := a.call(ctx, "SaveCredential", map[string]any{"service": service, "secret": string(secret)})
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s: %v\n", service, out["result"])
	return nil
}

// Update replaces the secret of an existing service.
func (a *App) Update(ctx context.Context) error {
	service, secret, err := a.promptServiceSecret()
	if err != nil {
		return a.report(err)
	}
	defer wipe(secret)

	if _, err := a.call(ctx, "UpdateCredential", map[string]any{"service": service, "secret": string(secret)}); err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s: updated\n", service)
	return nil
}

// Verify checks a candidate secret against the stored one.
func (a *App) Verify(ctx context.Context) error {
	service, secret, err := a.promptServiceSecret()
	if err != nil {
		return a.report(err)
	}
	defer wipe(secret)

	out, err := a.call(ctx, "VerifyCredential", map[string]any{"service": service, "secret": string(secret)})
	if err != nil {
		return a.report(err)
	}
	if valid, _ := out["valid"].(bool); valid {
		fmt.Fprintln(a.out, "match")
	} else {
		fmt.Fprintln(a.out, "no match")
	}
	return nil
}

// List prints the stored service names.
func (a *App) List(ctx context.Context) error {
	out, err := a.call(ctx, "ListServices", nil)
	if err != nil {
		return a.report(err)
	}

	services, _ := out["services"].([]any)
	if len(services) == 0 {
		fmt.Fprintln(a.out, "no credentials stored")
		return nil
	}
	for _, s := range services {
		fmt.Fprintf(a.out, "- %v\n", s)
	}
	return nil
}

// Delete removes the credential of a service.
func (a *App) Delete(ctx context.Context) error {
	service, err := GetSimpleText(a.reader, "Enter service", a.out)
	if err != nil {
		return a.report(err)
	}

	if _, err := a.call(ctx, "DeleteCredential", map[string]any{"service": service}); err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s: deleted\n", service)
	return nil
}

// Audit prints the most recent audit entries, newest first.
func (a *App) Audit(ctx context.Context) error {
	out, err := a.call(ctx, "GetAuditLog", map[string]any{"limit": 20})
	if err != nil {
		return a.report(err)
	}

	entries, _ := out["entries"].([]any)
	for _, raw := range entries {
		e, _ := raw.(map[string]any)
		fmt.Fprintf(a.out, "%v  %-18v %-7v %v\n", e["created_at"], e["action_type"], e["status"], e["details"])
	}
	return nil
}
