package notificationservice

import (
	"context"
	"database/sql"
	"errors"
)

var ErrRecordNotFound = errors.New("record not found")

func newNotificationModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insert(ctx context.Context, recipient, actor, blogID int, kind string) (int, error) {
	query := `
		INSERT INTO notifications (user_id, actor_id, type, blog_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int
	err := m.db.QueryRowContext(ctx, query, recipient, actor, kind, blogID).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (m *DBModel) getActivityDetails(ctx context.Context, id int) (*activityDetails, error) {
	query := `
		SELECT r.email, r.name, a.name, b.title
		FROM notifications n
		JOIN users r ON r.id = n.user_id
		JOIN users a ON a.id = n.actor_id
		JOIN blogs b ON b.id = n.blog_id
		WHERE n.id = $1`

	var d activityDetails
	err := m.db.QueryRowContext(ctx, query, id).Scan(&d.RecipientEmail, &d.RecipientName, &d.ActorName, &d.BlogTitle)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &d, nil
}

// getByUserId returns the recipient's notifications newest first, with the
// actor and the blog title resolved.
func (m *DBModel) getByUserId(ctx context.Context, userID int) ([]Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.type, n.read, n.created_at,
		       a.id, a.name, a.avatar,
		       b.id, b.title
		FROM notifications n
		JOIN users a ON a.id = n.actor_id
		JOIN blogs b ON b.id = n.blog_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC, n.id DESC`

	rows, err := m.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		err := rows.Scan(
			&n.ID, &n.UserID, &n.Kind, &n.Read, &n.CreatedAt,
			&n.From.ID, &n.From.Name, &n.From.Avatar,
			&n.Blog.ID, &n.Blog.Title,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// markAllRead flips every unread notification of the recipient; running it
// again is a no-op.
func (m *DBModel) markAllRead(ctx context.Context, userID int) error {
	query := `
		UPDATE notifications
		SET read = true
		WHERE user_id = $1 AND read = false`

	_, err := m.db.ExecContext(ctx, query, userID)
	return err
}
