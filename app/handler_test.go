package main

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postify/postify/internal/userservice"
)

var pngBytes = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00}

// newLightweightApplication builds an application that never touches the
// database or the broker, enough for routing and middleware tests.
func newLightweightApplication(t *testing.T, secret string) *application {
	cfg, err := loadConfig("../.test.env")
	require.NoError(t, err)
	cfg.UploadDir = t.TempDir()

	return &application{
		config:      cfg,
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		userService: userservice.NewUserService(nil, nil, userservice.NewTokenService(secret)),
	}
}

func TestHealthcheck(t *testing.T) {
	app := newLightweightApplication(t, "secret")
	ts := newTestServer(t, app.routes())

	code, _, body := ts.get(t, "/api/healthcheck", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "available", body["status"])
}

func TestRegisterUser(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	t.Run("valid registration", func(t *testing.T) {
		code, _, body := ts.post(t, "/api/auth/register", map[string]string{
			"name":     "Alice",
			"email":    "alice@example.com",
			"password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusCreated, code)
		assert.NotEmpty(t, body["token"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Alice", user["name"])
		assert.Equal(t, "alice@example.com", user["email"])
		assert.Equal(t, "user", user["role"])
		assert.NotContains(t, user, "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		code, _, body := ts.post(t, "/api/auth/register", map[string]string{
			"name":     "Alice Again",
			"email":    "alice@example.com",
			"password": "secret1",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "User already exists", body["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		code, _, body := ts.post(t, "/api/auth/register", map[string]string{
			"name": "No Email",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.NotNil(t, body["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		code, _, _ := ts.post(t, "/api/auth/register", "not an object", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestLoginUser(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	registerTestUser(t, ts, "Alice", "alice@example.com", "secret1")

	tests := []struct {
		name         string
		email        string
		password     string
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "valid credentials",
			email:        "alice@example.com",
			password:     "secret1",
			expectedCode: http.StatusOK,
		},
		{
			name:         "wrong password",
			email:        "alice@example.com",
			password:     "wrong",
			expectedCode: http.StatusUnauthorized,
			expectedErr:  "Invalid credentials",
		},
		{
			name:         "unknown email",
			email:        "nobody@example.com",
			password:     "secret1",
			expectedCode: http.StatusUnauthorized,
			expectedErr:  "Invalid credentials",
		},
		{
			name:         "missing password",
			email:        "alice@example.com",
			password:     "",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, body := ts.post(t, "/api/auth/login", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			}, nil)

			assert.Equal(t, tt.expectedCode, code)
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, body["error"])
			}
			if tt.expectedCode == http.StatusOK {
				assert.NotEmpty(t, body["token"])
				assert.NotNil(t, body["user"])
			}
		})
	}
}

func TestBlogCrud(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken := registerTestUser(t, ts, "Author", "author@example.com", "secret1")
	otherToken := registerTestUser(t, ts, "Other", "other@example.com", "secret1")

	var blogID string

	t.Run("create with cover", func(t *testing.T) {
		code, _, body := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
			"title":    "My First Post",
			"content":  "Hello world",
			"category": "tech",
			"tags":     "go, web",
		}, &testFile{field: "cover", name: "cover.png", contentType: "image/png", data: pngBytes}, &authorToken)

		require.Equal(t, http.StatusCreated, code)
		blog := body["blog"].(map[string]any)
		blogID = jsonID(t, blog["id"])
		assert.Equal(t, "My First Post", blog["title"])
		// tags are comma-split verbatim
		assert.Equal(t, []any{"go", " web"}, blog["tags"])
		cover, ok := blog["cover"].(string)
		require.True(t, ok)
		assert.Contains(t, cover, "/uploads/blogs/")
		assert.Contains(t, cover, "cover.png")
	})

	t.Run("create without auth", func(t *testing.T) {
		code, _, body := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
			"title":   "Nope",
			"content": "Nope",
		}, nil, nil)

		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Authorization token missing", body["error"])
	})

	t.Run("create with missing title", func(t *testing.T) {
		code, _, _ := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
			"content": "no title",
		}, nil, &authorToken)

		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("create with bad cover type", func(t *testing.T) {
		code, _, _ := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
			"title":   "Bad cover",
			"content": "content",
		}, &testFile{field: "cover", name: "cover.gif", contentType: "image/gif", data: pngBytes}, &authorToken)

		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("get by id", func(t *testing.T) {
		code, _, body := ts.get(t, "/api/blogs/"+blogID, nil)
		assert.Equal(t, http.StatusOK, code)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, "My First Post", blog["title"])
		author := blog["author"].(map[string]any)
		assert.Equal(t, "Author", author["name"])
	})

	t.Run("get with invalid id", func(t *testing.T) {
		code, _, _ := ts.get(t, "/api/blogs/abc", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("get missing blog", func(t *testing.T) {
		code, _, _ := ts.get(t, "/api/blogs/999999", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("list", func(t *testing.T) {
		code, _, body := ts.get(t, "/api/blogs", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, body["blogs"].([]any), 1)
	})

	t.Run("update by non-author", func(t *testing.T) {
		code, _, body := ts.submitForm(t, http.MethodPut, "/api/blogs/"+blogID, map[string]string{
			"title":   "Hijacked",
			"content": "x",
		}, nil, &otherToken)

		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Not allowed", body["error"])
	})

	t.Run("update by author keeps tags and cover", func(t *testing.T) {
		code, _, body := ts.submitForm(t, http.MethodPut, "/api/blogs/"+blogID, map[string]string{
			"title":   "My First Post, Revised",
			"content": "Hello again",
		}, nil, &authorToken)

		require.Equal(t, http.StatusOK, code)
		blog := body["blog"].(map[string]any)
		assert.Equal(t, "My First Post, Revised", blog["title"])
		assert.Equal(t, "Hello again", blog["content"])
		// category was not submitted, so it is wiped
		assert.Equal(t, "", blog["category"])
		// absent tags field and no file keep the stored values
		assert.Equal(t, []any{"go", " web"}, blog["tags"])
		assert.NotNil(t, blog["cover"])
	})

	t.Run("delete by non-author", func(t *testing.T) {
		code, _, body := ts.delete(t, "/api/blogs/"+blogID, &otherToken)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Not allowed", body["error"])
	})

	t.Run("delete by author", func(t *testing.T) {
		code, _, body := ts.delete(t, "/api/blogs/"+blogID, &authorToken)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Blog deleted", body["message"])

		code, _, _ = ts.get(t, "/api/blogs/"+blogID, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestLikesAndNotifications(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken := registerTestUser(t, ts, "Author", "author@example.com", "secret1")
	fanToken := registerTestUser(t, ts, "Fan", "fan@example.com", "secret1")

	code, _, body := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
		"title":   "Likeable",
		"content": "content",
	}, nil, &authorToken)
	require.Equal(t, http.StatusCreated, code)
	blogID := jsonID(t, body["blog"].(map[string]any)["id"])

	t.Run("like", func(t *testing.T) {
		code, _, body := ts.post(t, "/api/blogs/"+blogID+"/like", nil, &fanToken)
		require.Equal(t, http.StatusOK, code)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, float64(1), blog["likesCount"])
		assert.Len(t, blog["likes"].([]any), 1)
	})

	t.Run("author sees the notification", func(t *testing.T) {
		code, _, body := ts.get(t, "/api/notifications", &authorToken)
		require.Equal(t, http.StatusOK, code)

		notifications := body["notifications"].([]any)
		require.Len(t, notifications, 1)

		n := notifications[0].(map[string]any)
		assert.Equal(t, "like", n["type"])
		assert.Equal(t, false, n["read"])
		assert.Equal(t, "Fan", n["fromUser"].(map[string]any)["name"])
		assert.Equal(t, "Likeable", n["blog"].(map[string]any)["title"])
	})

	t.Run("unlike restores state and adds nothing", func(t *testing.T) {
		code, _, body := ts.post(t, "/api/blogs/"+blogID+"/like", nil, &fanToken)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, float64(0), body["blog"].(map[string]any)["likesCount"])

		code, _, body = ts.get(t, "/api/notifications", &authorToken)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, body["notifications"].([]any), 1)
	})

	t.Run("favorites follow the like set", func(t *testing.T) {
		code, _, body := ts.post(t, "/api/blogs/"+blogID+"/like", nil, &fanToken)
		require.Equal(t, http.StatusOK, code)
		_ = body

		code, _, body = ts.get(t, "/api/blogs/favorites/me", &fanToken)
		require.Equal(t, http.StatusOK, code)
		blogs := body["blogs"].([]any)
		require.Len(t, blogs, 1)
		assert.Equal(t, "Likeable", blogs[0].(map[string]any)["title"])

		code, _, body = ts.get(t, "/api/blogs/favorites/me", &authorToken)
		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, body["blogs"])
	})

	t.Run("trending includes the liked blog", func(t *testing.T) {
		code, _, body := ts.get(t, "/api/blogs/trending", nil)
		require.Equal(t, http.StatusOK, code)
		blogs := body["blogs"].([]any)
		require.NotEmpty(t, blogs)
		assert.Equal(t, "Likeable", blogs[0].(map[string]any)["title"])
	})

	t.Run("mark all read", func(t *testing.T) {
		code, _, body := ts.put(t, "/api/notifications/read", nil, &authorToken)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["success"])

		code, _, body = ts.get(t, "/api/notifications", &authorToken)
		require.Equal(t, http.StatusOK, code)
		for _, n := range body["notifications"].([]any) {
			assert.Equal(t, true, n.(map[string]any)["read"])
		}
	})
}

func TestComments(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken := registerTestUser(t, ts, "Author", "author@example.com", "secret1")
	commenterToken := registerTestUser(t, ts, "Commenter", "commenter@example.com", "secret1")
	otherToken := registerTestUser(t, ts, "Other", "other@example.com", "secret1")

	code, _, body := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
		"title":   "Discussable",
		"content": "content",
	}, nil, &authorToken)
	require.Equal(t, http.StatusCreated, code)
	blogID := jsonID(t, body["blog"].(map[string]any)["id"])

	var commentID string

	t.Run("add", func(t *testing.T) {
		code, _, body := ts.post(t, "/api/blogs/"+blogID+"/comment", map[string]string{
			"text": "  great post  ",
		}, &commenterToken)
		require.Equal(t, http.StatusOK, code)

		comments := body["comments"].([]any)
		require.Len(t, comments, 1)
		c := comments[0].(map[string]any)
		commentID = jsonID(t, c["id"])
		assert.Equal(t, "great post", c["text"])
		assert.Equal(t, "Commenter", c["user"].(map[string]any)["name"])

		// the author is notified about the comment
		code, _, body = ts.get(t, "/api/notifications", &authorToken)
		require.Equal(t, http.StatusOK, code)
		notifications := body["notifications"].([]any)
		require.Len(t, notifications, 1)
		assert.Equal(t, "comment", notifications[0].(map[string]any)["type"])
	})

	t.Run("blank text", func(t *testing.T) {
		code, _, _ := ts.post(t, "/api/blogs/"+blogID+"/comment", map[string]string{
			"text": "   ",
		}, &commenterToken)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("missing blog", func(t *testing.T) {
		code, _, _ := ts.post(t, "/api/blogs/999999/comment", map[string]string{
			"text": "into the void",
		}, &commenterToken)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("edit by non-owner", func(t *testing.T) {
		code, _, body := ts.put(t, "/api/blogs/"+blogID+"/comments/"+commentID, map[string]string{
			"text": "rewritten",
		}, &authorToken)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Not allowed", body["error"])
	})

	t.Run("edit by owner", func(t *testing.T) {
		code, _, body := ts.put(t, "/api/blogs/"+blogID+"/comments/"+commentID, map[string]string{
			"text": "even greater post",
		}, &commenterToken)
		require.Equal(t, http.StatusOK, code)

		blog := body["blog"].(map[string]any)
		comments := blog["comments"].([]any)
		require.Len(t, comments, 1)
		assert.Equal(t, "even greater post", comments[0].(map[string]any)["text"])
	})

	t.Run("delete by third party", func(t *testing.T) {
		code, _, _ := ts.delete(t, "/api/blogs/"+blogID+"/comments/"+commentID, &otherToken)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("delete by blog author", func(t *testing.T) {
		code, _, body := ts.delete(t, "/api/blogs/"+blogID+"/comments/"+commentID, &authorToken)
		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, body["blog"].(map[string]any)["comments"])
	})

	t.Run("delete missing comment", func(t *testing.T) {
		code, _, _ := ts.delete(t, "/api/blogs/"+blogID+"/comments/999999", &authorToken)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestProfile(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerTestUser(t, ts, "Alice", "alice@example.com", "secret1")

	code, _, _ := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
		"title":   "Mine",
		"content": "content",
	}, nil, &token)
	require.Equal(t, http.StatusCreated, code)

	t.Run("get profile", func(t *testing.T) {
		code, _, body := ts.get(t, "/api/users/me", &token)
		require.Equal(t, http.StatusOK, code)

		user := body["user"].(map[string]any)
		assert.Equal(t, "Alice", user["name"])
		assert.Equal(t, "", user["bio"])
		assert.Len(t, body["blogs"].([]any), 1)
	})

	t.Run("update name bio and avatar", func(t *testing.T) {
		code, _, body := ts.submitForm(t, http.MethodPut, "/api/users/me", map[string]string{
			"name": "Alice B.",
			"bio":  "writes about Go",
		}, &testFile{field: "avatar", name: "me.jpg", contentType: "image/jpeg", data: pngBytes}, &token)
		require.Equal(t, http.StatusOK, code)

		user := body["user"].(map[string]any)
		assert.Equal(t, "Alice B.", user["name"])
		assert.Equal(t, "writes about Go", user["bio"])
		avatar, ok := user["avatar"].(string)
		require.True(t, ok)
		assert.Contains(t, avatar, "/uploads/users/")
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		code, _, body := ts.submitForm(t, http.MethodPut, "/api/users/me", map[string]string{
			"bio": "still writes about Go",
		}, nil, &token)
		require.Equal(t, http.StatusOK, code)

		user := body["user"].(map[string]any)
		assert.Equal(t, "Alice B.", user["name"])
		assert.Equal(t, "still writes about Go", user["bio"])
		assert.NotNil(t, user["avatar"])
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		code, _, _ := ts.submitForm(t, http.MethodPut, "/api/users/me", map[string]string{
			"name": "",
		}, nil, &token)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestStaticUploads(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := registerTestUser(t, ts, "Author", "author@example.com", "secret1")

	code, _, body := ts.submitForm(t, http.MethodPost, "/api/blogs", map[string]string{
		"title":   "With cover",
		"content": "content",
	}, &testFile{field: "cover", name: "cover.png", contentType: "image/png", data: pngBytes}, &token)
	require.Equal(t, http.StatusCreated, code)

	cover := body["blog"].(map[string]any)["cover"].(string)

	res, err := ts.Client().Get(ts.URL + cover)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

// jsonID renders a JSON-decoded numeric id back into its URL form.
func jsonID(t *testing.T, v any) string {
	t.Helper()

	f, ok := v.(float64)
	require.True(t, ok, "expected a numeric id, got %T", v)
	return strconv.Itoa(int(f))
}
