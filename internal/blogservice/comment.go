package blogservice

import (
	"context"
	"database/sql"
	"errors"
)

var ErrCommentNotFound = errors.New("comment not found")

// commentRow is the ownership view of a comment used for authorization.
type commentRow struct {
	ID     int
	BlogID int
	UserID int
}

func (m *BlogModel) insertComment(ctx context.Context, blogID, userID int, text string) (int, error) {
	query := `
		INSERT INTO comments (blog_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int
	err := m.db.QueryRowContext(ctx, query, blogID, userID, text).Scan(&id)
	if err != nil {
		switch {
		case ForeignKeyError(err, "comments_blog_id_fkey"):
			return 0, ErrRecordNotFound
		case ForeignKeyError(err, "comments_user_id_fkey"):
			return 0, ErrUserForeignKey
		default:
			return 0, err
		}
	}

	return id, nil
}

func (m *BlogModel) getComment(ctx context.Context, blogID, commentID int) (*commentRow, error) {
	query := `
		SELECT id, blog_id, user_id
		FROM comments
		WHERE id = $1 AND blog_id = $2`

	var c commentRow
	err := m.db.QueryRowContext(ctx, query, commentID, blogID).Scan(&c.ID, &c.BlogID, &c.UserID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrCommentNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *BlogModel) updateComment(ctx context.Context, commentID int, text string) error {
	query := `
		UPDATE comments
		SET text = $1, updated_at = now()
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, text, commentID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCommentNotFound
	}

	return nil
}

func (m *BlogModel) deleteComment(ctx context.Context, commentID int) error {
	query := `
		DELETE FROM comments
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, commentID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCommentNotFound
	}

	return nil
}

// getComments returns a blog's comments newest first with each commenter
// resolved.
func (m *BlogModel) getComments(ctx context.Context, blogID int) ([]Comment, error) {
	query := `
		SELECT c.id, c.text, c.created_at, c.updated_at, u.id, u.name, u.avatar
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.blog_id = $1
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.Text, &c.CreatedAt, &c.UpdatedAt, &c.User.ID, &c.User.Name, &c.User.Avatar)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}
