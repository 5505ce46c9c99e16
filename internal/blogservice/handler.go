package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/postify/postify/internal/common"
)

// ErrNotAllowed is returned when an authenticated caller fails an ownership
// check. Handlers map it to 403.
var ErrNotAllowed = errors.New("not allowed")

const trendingLimit = 6

func NewBlogService(db *sql.DB, c *common.Cache, notifier Notifier) *BlogService {
	return &BlogService{
		m:        newBlogModel(db),
		c:        c,
		notifier: notifier,
	}
}

// CreateBlog stores a new blog owned by the caller and returns it resolved.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := &Blog{
		Title:    req.Title,
		Content:  sanitizeContent(req.Content),
		Category: req.Category,
		Tags:     req.Tags,
		Cover:    req.Cover,
		Author:   Author{ID: req.UserID},
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	err := s.m.insert(ctx, blog)
	if err != nil {
		return nil, err
	}

	return s.m.getBlogById(ctx, blog.ID)
}

// GetBlogByID returns a blog with its author, like-set and comments resolved.
func (s *BlogService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		return cached.(*Blog), nil
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), blog)

	return blog, nil
}

// GetBlogs returns all blogs, newest first.
func (s *BlogService) GetBlogs(ctx context.Context) ([]Blog, error) {
	return s.m.getBlogs(ctx)
}

// GetTrendingBlogs returns the six most liked blogs, like count descending
// with creation time as the tie-break. The result is cached briefly and
// invalidated by like toggles.
func (s *BlogService) GetTrendingBlogs(ctx context.Context) ([]Blog, error) {
	if cached, ok := s.c.Get(common.CacheKeyTrending); ok {
		return cached.([]Blog), nil
	}

	blogs, err := s.m.getTrendingBlogs(ctx, trendingLimit)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyTrending, blogs)

	return blogs, nil
}

// GetFavoriteBlogs returns the blogs whose like-set contains the caller.
func (s *BlogService) GetFavoriteBlogs(ctx context.Context, userID int) ([]Blog, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getFavoriteBlogs(ctx, userID)
}

// GetBlogsByUserId returns all blogs authored by a user, newest first.
func (s *BlogService) GetBlogsByUserId(ctx context.Context, userID int) ([]Blog, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getBlogsByUserId(ctx, userID)
}

// UpdateBlog overwrites title, content and category with the submitted values
// (including empty ones, matching the product's form semantics). Tags and
// cover are only replaced when supplied. Only the author may update.
func (s *BlogService) UpdateBlog(ctx context.Context, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, req.ID, "id")
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if blog.Author.ID != req.UserID {
		return nil, ErrNotAllowed
	}

	blog.Title = req.Title
	blog.Content = sanitizeContent(req.Content)
	blog.Category = req.Category
	if req.Tags != nil {
		blog.Tags = req.Tags
	}
	if req.Cover != nil {
		blog.Cover = req.Cover
	}

	err = s.m.updateBlog(ctx, blog)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlog(req.ID))
	s.c.Delete(common.CacheKeyTrending)

	return s.m.getBlogById(ctx, req.ID)
}

// DeleteBlog removes a blog and, through the schema, its comments, likes and
// notifications. Only the author may delete.
func (s *BlogService) DeleteBlog(ctx context.Context, blogID, userID int) error {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, blogID)
	if err != nil {
		return err
	}

	if blog.Author.ID != userID {
		return ErrNotAllowed
	}

	err = s.m.deleteBlog(ctx, blogID)
	if err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(blogID))
	s.c.Delete(common.CacheKeyTrending)

	return nil
}

// ToggleLike flips the caller's membership in the blog's like-set. The
// not-liked -> liked transition notifies the blog's author, even when the
// caller likes their own blog. Unliking never notifies.
func (s *BlogService) ToggleLike(ctx context.Context, blogID, userID int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, blogID)
	if err != nil {
		return nil, err
	}

	liked, err := s.m.toggleLike(ctx, blogID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		err = s.notifier.Notify(ctx, blog.Author.ID, userID, blogID, NotifyLike)
		if err != nil {
			return nil, err
		}
	}

	s.c.Delete(common.CacheKeyBlog(blogID))
	s.c.Delete(common.CacheKeyTrending)

	return s.m.getBlogById(ctx, blogID)
}

// AddComment stores a trimmed comment at the head of the blog's list and
// notifies the blog's author. Returns the refreshed comment list.
func (s *BlogService) AddComment(ctx context.Context, blogID, userID int, text string) ([]Comment, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	validateInt(v, userID, "user_id")
	validateCommentText(v, text)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, blogID)
	if err != nil {
		return nil, err
	}

	_, err = s.m.insertComment(ctx, blogID, userID, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}

	err = s.notifier.Notify(ctx, blog.Author.ID, userID, blogID, NotifyComment)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlog(blogID))

	return s.m.getComments(ctx, blogID)
}

// EditComment replaces a comment's text. Only the comment's own author may
// edit; no notification is emitted. Returns the resolved blog.
func (s *BlogService) EditComment(ctx context.Context, blogID, commentID, userID int, text string) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "blog_id")
	validateInt(v, commentID, "comment_id")
	validateInt(v, userID, "user_id")
	validateCommentText(v, text)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	_, err := s.m.getBlogById(ctx, blogID)
	if err != nil {
		return nil, err
	}

	comment, err := s.m.getComment(ctx, blogID, commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != userID {
		return nil, ErrNotAllowed
	}

	err = s.m.updateComment(ctx, commentID, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlog(blogID))

	return s.m.getBlogById(ctx, blogID)
}

// DeleteComment removes a comment. The comment's author or the blog's author
// may delete; no notification is emitted. Returns the resolved blog.
func (s *BlogService) DeleteComment(ctx context.Context, blogID, commentID, userID int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "blog_id")
	validateInt(v, commentID, "comment_id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, blogID)
	if err != nil {
		return nil, err
	}

	comment, err := s.m.getComment(ctx, blogID, commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != userID && blog.Author.ID != userID {
		return nil, ErrNotAllowed
	}

	err = s.m.deleteComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlog(blogID))

	return s.m.getBlogById(ctx, blogID)
}
