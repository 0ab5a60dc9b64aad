package service

import (
	"context"
	"time"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
)

// EmailNotifier 通过 SMTP 发送账号通知
type EmailNotifier struct {
	emailCfg pkg.SMTPConfig
	send     func(cfg pkg.SMTPConfig, to, subject, html string) error
}

func NewEmailNotifier(cfg pkg.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{emailCfg: cfg, send: pkg.SendEmail}
}

func (n *EmailNotifier) PasswordChanged(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	html := pkg.PasswordChangedHTML(user.Name, time.Now())
	return n.send(n.emailCfg, user.Email, "Your PedagoPass password was changed", html)
}
