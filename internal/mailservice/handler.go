package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/postify/postify/internal/common"
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(host, port, username, password, sender, NewTemplate()),
		logger:    logger,
		baseDelay: 500 * time.Millisecond,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SendWelcomeEmail consumes user.registered messages and emails each new
// account a welcome message.
func (s *MailService) SendWelcomeEmail() {
	msgs, err := s.mb.Consume(common.UserRegisteredKey, common.NotificationExchange, common.WelcomeEmailQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data welcomeEvent
				err := json.Unmarshal(msg.Body, &data)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				s.deliver(msg, data.Email, data, "welcome_email.html", "welcome email")

			case <-s.ctx.Done():
				s.logger.Info("stopping SendWelcomeEmail due to context cancellation")
				return
			}
		}
	}()
}

// SendActivityEmail consumes blog.liked and blog.commented messages and
// emails the blog author about the new activity.
func (s *MailService) SendActivityEmail() {
	msgs, err := s.mb.Consume(common.BlogLikedKey, common.NotificationExchange, common.ActivityEmailQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data activityEvent
				err := json.Unmarshal(msg.Body, &data)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				s.deliver(msg, data.Email, data, "activity_email.html", "activity email")

			case <-s.ctx.Done():
				s.logger.Info("stopping SendActivityEmail due to context cancellation")
				return
			}
		}
	}()
}

// deliver sends a single email with exponential backoff and jitter. The
// message is acked either way so a broken address cannot wedge the queue.
// The final failed attempt acks immediately instead of sleeping first.
func (s *MailService) deliver(msg amqp.Delivery, recipient string, payload any, templateFile, kind string) {
	const maxRetries = 5

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.m.send(recipient, payload, templateFile)
		if err == nil {
			s.logger.Info(kind+" sent", slog.String("email", recipient))
			msg.Ack(false)
			return
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying "+kind, slog.String("email", recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))
		time.Sleep(delay)
	}

	s.logger.Error("could not send "+kind, slog.String("email", recipient))
	msg.Ack(false)
}

func (s *MailService) Close() {
	s.cancel()
}
