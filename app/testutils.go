package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postify/postify/internal/blogservice"
	"github.com/postify/postify/internal/common"
	"github.com/postify/postify/internal/mailservice"
	"github.com/postify/postify/internal/notificationservice"
	"github.com/postify/postify/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	rabbitURI := common.TestRabbitMQ(t)
	rabbitmq, err := common.NewMessageBroker(rabbitURI)
	assert.NoError(t, err)

	err = common.SetupNotificationExchange(rabbitmq)
	assert.NoError(t, err)

	cfg, err := loadConfig("../.test.env")
	assert.NoError(t, err)

	// keep uploaded test files out of the working tree
	cfg.UploadDir = t.TempDir()

	cache := common.NewCache(1*time.Minute, 5*time.Minute)
	tokens := userservice.NewTokenService(cfg.JWTSecret)
	notificationService := notificationservice.NewNotificationService(db, rabbitmq)

	app := &application{
		config:              cfg,
		logger:              logger,
		userService:         userservice.NewUserService(db, rabbitmq, tokens),
		blogService:         blogservice.NewBlogService(db, cache, notificationService),
		notificationService: notificationService,
		broker:              rabbitmq,
		mailService:         mailservice.NewMailService(rabbitmq, cfg.Mail.Host, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.Port, logger),
	}

	return app, db
}

// registerTestUser registers a user over the API and returns the bearer token.
func registerTestUser(t *testing.T, ts *testServer, name, email, password string) string {
	code, _, body := ts.post(t, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	token, ok := body["token"].(string)
	require.True(t, ok, "expected a token in the register response")
	return token
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, "", token)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token *string) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	return ts.do(t, http.MethodPost, path, bytes.NewReader(jsonPayload), "application/json", token)
}

func (ts *testServer) put(t *testing.T, path string, payload any, token *string) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	return ts.do(t, http.MethodPut, path, bytes.NewReader(jsonPayload), "application/json", token)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, nil, "", token)
}

// testFile describes an image attached to a multipart submission.
type testFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

// submitForm sends a multipart form with the given fields and optional file.
func (ts *testServer) submitForm(t *testing.T, method, path string, fields map[string]string, file *testFile, token *string) (int, http.Header, envelope) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		err := w.WriteField(key, value)
		if err != nil {
			t.Fatal(err)
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))
		h.Set("Content-Type", file.contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatal(err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	return ts.do(t, method, path, &buf, w.FormDataContentType(), token)
}
