package notifications

import (
	"context"
	"errors"

	appconfig "eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// EmailNotifier define a interface para um notificador de email.
type EmailNotifier interface {
	SendEmail(ctx context.Context, to, subject, bodyHTML, bodyText string) error
}

// SESEmailNotifier implementa EmailNotifier usando AWS SES.
type SESEmailNotifier struct {
	client *sesv2.Client
	sender string
}

// DefaultEmailNotifier é o notificador padrão usado pela aplicação.
var DefaultEmailNotifier EmailNotifier

// InitEmailService inicializa o notificador de e-mail a partir da configuração.
// SES ausente não derruba a aplicação: e-mails passam a ser simulados no log.
func InitEmailService() {
	log := phxlog.L.Named("InitEmailService")

	awsRegion := appconfig.Cfg.AWSRegion
	senderEmail := appconfig.Cfg.AWSSESEmailSender

	if awsRegion == "" || senderEmail == "" {
		log.Warn("AWS SES email service is not configured (missing AWS_REGION or AWS_SES_EMAIL_SENDER). Emails will be simulated.")
		DefaultEmailNotifier = nil
		return
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		log.Error("Failed to load AWS SDK config for SES", zap.Error(err))
		DefaultEmailNotifier = nil
		return
	}

	DefaultEmailNotifier = &SESEmailNotifier{
		client: sesv2.NewFromConfig(cfg),
		sender: senderEmail,
	}
	log.Info("AWS SES email service initialized", zap.String("sender", senderEmail), zap.String("region", awsRegion))
}

// SendEmailNotification envia um e-mail usando o notificador configurado.
func SendEmailNotification(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	if DefaultEmailNotifier == nil {
		phxlog.L.Info("--- SIMULATING EMAIL SEND (SES not configured) ---",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}
	return DefaultEmailNotifier.SendEmail(ctx, to, subject, bodyHTML, bodyText)
}

// SendEmail é o método da implementação SESEmailNotifier.
func (s *SESEmailNotifier) SendEmail(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	if s.client == nil {
		return errors.New("SES client not initialized")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &s.sender,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(bodyHTML),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(bodyText),
						Charset: aws.String("UTF-8"),
					},
				},
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		phxlog.L.Error("Failed to send email via SES", zap.Error(err), zap.String("recipient", to))
		return err
	}

	phxlog.L.Info("Successfully sent email", zap.String("recipient", to), zap.String("subject", subject))
	return nil
}
