package notificationservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/postify/postify/internal/common"
)

const (
	KindLike    = "like"
	KindComment = "comment"
)

func NewNotificationService(db *sql.DB, mb common.MessageProducer) *NotificationService {
	return &NotificationService{
		m:  newNotificationModel(db),
		mb: mb,
	}
}

// Notify records that actor liked or commented on the recipient's blog and
// publishes the matching activity event for the email consumer. The record
// insert is synchronous with the triggering request; only email delivery is
// asynchronous. Self-notifications are written like any other.
func (s *NotificationService) Notify(ctx context.Context, recipient, actor, blogID int, kind string) error {
	v := common.NewValidator()
	validateInt(v, recipient, "recipient")
	validateInt(v, actor, "actor")
	validateInt(v, blogID, "blog_id")
	validateKind(v, kind)
	if !v.Valid() {
		return v.ValidationError()
	}

	id, err := s.m.insert(ctx, recipient, actor, blogID, kind)
	if err != nil {
		return err
	}

	details, err := s.m.getActivityDetails(ctx, id)
	if err != nil {
		return err
	}

	data := struct {
		Email     string
		Recipient string
		Actor     string
		BlogTitle string
		Kind      string
	}{
		Email:     details.RecipientEmail,
		Recipient: details.RecipientName,
		Actor:     details.ActorName,
		BlogTitle: details.BlogTitle,
		Kind:      kind,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	key := common.BlogLikedKey
	if kind == KindComment {
		key = common.BlogCommentedKey
	}

	return s.mb.Publish(ctx, eventData, key, common.NotificationExchange)
}

// GetNotifications returns the caller's feed, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, userID int) ([]Notification, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getByUserId(ctx, userID)
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.markAllRead(ctx, userID)
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}

func validateKind(v *common.Validator, kind string) {
	v.Check(kind == KindLike || kind == KindComment, "type", fmt.Sprintf("must be %q or %q", KindLike, KindComment))
}
