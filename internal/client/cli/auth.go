package cli

import (
	"context"

	"github.com/dmitrijs2005/catalogctl/internal/common"
)

// Login prompts for e-mail and password and signs in. The outcome is
// reported by the session manager.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Senha")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.sessionManager().SignIn(ctx, email, string(password))
}

// Forgot asks for an e-mail and requests a password recovery link for it.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	return a.sessionManager().ForgotPassword(ctx, email)
}

// SetPassword finishes an invite or recovery flow. The password is typed
// twice; on success the console moves on to the dashboard.
func (a *App) SetPassword(ctx context.Context) error {
	password, err := getPassword(a.out, "Nova senha")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(a.out, "Confirme a nova senha")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	m := a.sessionManager()
	if err := m.ConfirmPasswords(string(password), string(confirmation)); err != nil {
		return err
	}
	return m.UpdatePassword(ctx, string(password), m.EndRecovery)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.sessionManager().SignOut(ctx); err != nil {
		return err
	}
	printlnFn("Sessão encerrada.")
	return nil
}
