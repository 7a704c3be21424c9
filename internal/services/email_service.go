package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/spendlog/internal/models"
	pkglogger "github.com/BradenHooton/spendlog/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// LockoutNotifier tells an account owner their username has been blocked
type LockoutNotifier interface {
	NotifyLockout(ctx context.Context, user *models.User, remaining time.Duration) error
}

// SESClient is the subset of the SES API used for notifications
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESLockoutNotifier sends lockout emails through AWS SES
type SESLockoutNotifier struct {
	client      SESClient
	fromAddress string
	logger      *slog.Logger
}

// NewSESLockoutNotifier loads the default AWS credential chain for region
func NewSESLockoutNotifier(ctx context.Context, region, fromAddress string, logger *slog.Logger) (*SESLockoutNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESLockoutNotifierWithClient(ses.NewFromConfig(cfg), fromAddress, logger), nil
}

func NewSESLockoutNotifierWithClient(client SESClient, fromAddress string, logger *slog.Logger) *SESLockoutNotifier {
	return &SESLockoutNotifier{
		client:      client,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

func (s *SESLockoutNotifier) NotifyLockout(ctx context.Context, user *models.User, remaining time.Duration) error {
	minutes, seconds := splitMinutesSeconds(int(remaining / time.Second))

	textBody := fmt.Sprintf(`Hello %s,

We received several failed sign-in attempts for your account in a short period,
so sign-in has been paused for %d minutes and %d seconds.

If this was you, wait and try again with the correct password.
If it was not you, consider changing your password once sign-in is available again.

This is an automated message. Please do not reply to this email.
`, user.Username, minutes, seconds)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{user.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Sign-in temporarily blocked"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send lockout email via SES",
			slog.String("email", pkglogger.SanitizedEmail(user.Email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("lockout email sent",
		slog.String("email", pkglogger.SanitizedEmail(user.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// LogLockoutNotifier only records the lockout in the service log. Used when
// no sender address is configured.
type LogLockoutNotifier struct {
	logger *slog.Logger
}

func NewLogLockoutNotifier(logger *slog.Logger) *LogLockoutNotifier {
	return &LogLockoutNotifier{logger: logger}
}

func (n *LogLockoutNotifier) NotifyLockout(ctx context.Context, user *models.User, remaining time.Duration) error {
	n.logger.Info("lockout notification skipped: email not configured",
		slog.String("username", pkglogger.SanitizedUsername(user.Username)),
		slog.Duration("remaining", remaining))
	return nil
}

func splitMinutesSeconds(total int) (int, int) {
	if total < 0 {
		total = 0
	}
	return total / 60, total % 60
}
