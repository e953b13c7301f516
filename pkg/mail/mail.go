package mail

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/teambdspro/BDSPRO-sub001/config"
)

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender 邮件发送接口（Service 层依赖此接口，便于测试替换）
type Sender interface {
	Send(msg *Message) error
}

// smtpSender 基于 gomail 的 SMTP 实现
type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPSender 创建 SMTP 邮件发送器
func NewSMTPSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpSender) Send(msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
	}
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	s.logger.Info("邮件已发送", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
