package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserForeignKey = errors.New("user_id does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// blogSelect joins the author and aggregates the like-set into an array so a
// single row carries everything but the comments.
const blogSelect = `
	SELECT b.id, b.title, b.content, b.category, b.tags, b.cover, b.created_at, b.updated_at,
	       u.id, u.name, u.avatar,
	       COALESCE(array_agg(l.user_id) FILTER (WHERE l.user_id IS NOT NULL), '{}') AS likes
	FROM blogs b
	JOIN users u ON u.id = b.user_id
	LEFT JOIN blog_likes l ON l.blog_id = b.id`

func scanBlog(row interface{ Scan(...any) error }) (*Blog, error) {
	var blog Blog
	err := row.Scan(
		&blog.ID, &blog.Title, &blog.Content, &blog.Category, pq.Array(&blog.Tags), &blog.Cover, &blog.CreatedAt, &blog.UpdatedAt,
		&blog.Author.ID, &blog.Author.Name, &blog.Author.Avatar,
		pq.Array(&blog.Likes),
	)
	if err != nil {
		return nil, err
	}

	blog.LikesCount = len(blog.Likes)
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	if blog.Likes == nil {
		blog.Likes = []int64{}
	}

	return &blog, nil
}

func (m *BlogModel) queryBlogs(ctx context.Context, query string, args ...any) ([]Blog, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) insert(ctx context.Context, b *Blog) error {
	query := `
		INSERT INTO blogs (title, content, category, tags, cover, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	args := []any{b.Title, b.Content, b.Category, pq.Array(b.Tags), b.Cover, b.Author.ID}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// getBlogById resolves the author, the like-set and every comment's author.
func (m *BlogModel) getBlogById(ctx context.Context, id int) (*Blog, error) {
	query := blogSelect + `
	WHERE b.id = $1
	GROUP BY b.id, u.id`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	comments, err := m.getComments(ctx, blog.ID)
	if err != nil {
		return nil, err
	}
	blog.Comments = comments

	return blog, nil
}

func (m *BlogModel) updateBlog(ctx context.Context, b *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, content = $2, category = $3, tags = $4, cover = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at`

	args := []any{b.Title, b.Content, b.Category, pq.Array(b.Tags), b.Cover, b.ID}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&b.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// deleteBlog removes the blog row; likes, comments and notifications cascade.
func (m *BlogModel) deleteBlog(ctx context.Context, blogId int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, blogId)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// getBlogs returns every blog, newest first. The product has no pagination;
// the full scan is an accepted limitation.
func (m *BlogModel) getBlogs(ctx context.Context) ([]Blog, error) {
	query := blogSelect + `
	GROUP BY b.id, u.id
	ORDER BY b.created_at DESC`

	return m.queryBlogs(ctx, query)
}

// getTrendingBlogs orders by like-set cardinality with creation time as the
// deterministic tie-break and returns at most limit rows.
func (m *BlogModel) getTrendingBlogs(ctx context.Context, limit int) ([]Blog, error) {
	query := blogSelect + `
	GROUP BY b.id, u.id
	ORDER BY count(l.user_id) DESC, b.created_at DESC
	LIMIT $1`

	return m.queryBlogs(ctx, query, limit)
}

func (m *BlogModel) getFavoriteBlogs(ctx context.Context, userID int) ([]Blog, error) {
	query := blogSelect + `
	WHERE b.id IN (SELECT blog_id FROM blog_likes WHERE user_id = $1)
	GROUP BY b.id, u.id
	ORDER BY b.created_at DESC`

	return m.queryBlogs(ctx, query, userID)
}

func (m *BlogModel) getBlogsByUserId(ctx context.Context, userID int) ([]Blog, error) {
	query := blogSelect + `
	WHERE b.user_id = $1
	GROUP BY b.id, u.id
	ORDER BY b.created_at DESC`

	return m.queryBlogs(ctx, query, userID)
}

// toggleLike flips the (blog, user) membership in the like-set and reports
// whether the transition was not-liked -> liked. Insert-on-conflict plus
// delete keeps the flip atomic without application-level locking.
func (m *BlogModel) toggleLike(ctx context.Context, blogID, userID int) (bool, error) {
	insert := `
		INSERT INTO blog_likes (blog_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (blog_id, user_id) DO NOTHING`

	res, err := m.db.ExecContext(ctx, insert, blogID, userID)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blog_likes_blog_id_fkey"):
			return false, ErrRecordNotFound
		case ForeignKeyError(err, "blog_likes_user_id_fkey"):
			return false, ErrUserForeignKey
		default:
			return false, err
		}
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if rows == 1 {
		return true, nil
	}

	del := `
		DELETE FROM blog_likes
		WHERE blog_id = $1 AND user_id = $2`

	_, err = m.db.ExecContext(ctx, del, blogID, userID)
	if err != nil {
		return false, err
	}

	return false, nil
}
