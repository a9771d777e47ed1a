package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fdg312/meal-planner/internal/config"
)

func TestNewSenderFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
		want    any
	}{
		{name: "default local", cfg: config.Config{}, want: &LocalSender{}},
		{name: "smtp missing host", cfg: config.Config{EmailSenderMode: "smtp"}, wantErr: "SMTP_HOST"},
		{name: "smtp missing password", cfg: config.Config{
			EmailSenderMode: "smtp", SMTPHost: "mail", SMTPPort: 587, SMTPFrom: "a@b.c", SMTPUsername: "u",
		}, wantErr: "SMTP_PASSWORD"},
		{name: "smtp ok", cfg: config.Config{
			EmailSenderMode: "smtp", SMTPHost: "mail", SMTPPort: 587, SMTPFrom: "a@b.c",
		}, want: &SMTPSender{}},
		{name: "resend missing key", cfg: config.Config{EmailSenderMode: "resend"}, wantErr: "RESEND_API_KEY"},
		{name: "resend ok", cfg: config.Config{EmailSenderMode: "resend", ResendAPIKey: "k"}, want: &ResendSender{}},
		{name: "unknown", cfg: config.Config{EmailSenderMode: "pigeon"}, wantErr: "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewSenderFromConfig(&tt.cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, sender)
		})
	}
}

func TestLocalSenderLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLocalSender(zap.New(core))

	err := sender.Send(context.Background(), Message{To: "cook@example.com", Subject: "List", Text: "Garlic"})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "cook@example.com", entries[0].ContextMap()["to"])
}

func TestLocalSenderRejectsBadRecipient(t *testing.T) {
	sender := NewLocalSender(nil)
	err := sender.Send(context.Background(), Message{To: "not an address", Subject: "List"})
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestResendSender(t *testing.T) {
	var got resendEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	sender := NewResendSender(ResendConfig{APIKey: "key", From: "list@example.com", BaseURL: srv.URL})
	err := sender.Send(context.Background(), Message{
		To:          "Cook <cook@example.com>",
		Subject:     "List",
		Text:        "Garlic",
		Attachments: []Attachment{{Filename: "list.csv", ContentType: "text/csv", Data: []byte("item\nGarlic\n")}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cook@example.com"}, got.To)
	assert.Equal(t, "Garlic", got.Text)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "list.csv", got.Attachments[0].Filename)
	decoded, err := base64.StdEncoding.DecodeString(got.Attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "item\nGarlic\n", string(decoded))
}

func TestResendSenderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad address"}`))
	}))
	defer srv.Close()

	sender := NewResendSender(ResendConfig{APIKey: "key", BaseURL: srv.URL})
	err := sender.Send(context.Background(), Message{To: "cook@example.com", Subject: "s", Text: "t"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "validation_error", apiErr.Name)
	assert.Contains(t, err.Error(), "bad address")
}

func TestResendSenderPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewResendSender(ResendConfig{APIKey: "key", BaseURL: srv.URL})
	err := sender.Send(context.Background(), Message{To: "cook@example.com"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream down", apiErr.Message)
}

var testFrom = &mail.Address{Name: "Meal Planner", Address: "list@example.com"}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	raw, err := buildMessage(testFrom, "cook@example.com", Message{Subject: "Hi\r\nBcc: evil@example.com", Text: "body"}, now)
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "Subject: Hi Bcc: evil@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
	assert.Contains(t, msg, "Date: Mon, 02 Mar 2026 09:00:00 +0000\r\n")
	assert.Contains(t, msg, "Message-ID: <")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nbody"))
}

func TestBuildMessageWithAttachment(t *testing.T) {
	csv := []byte(strings.Repeat("Garlic,6,clove\n", 20))
	raw, err := buildMessage(testFrom, "cook@example.com", Message{
		Subject:     "Shopping list",
		Text:        "see attached",
		Attachments: []Attachment{{Filename: "shopping_2026-03-02_2026-03-08.csv", ContentType: "text/csv", Data: csv}},
	}, time.Now())
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	textPart, err := mr.NextPart()
	require.NoError(t, err)
	text, err := io.ReadAll(textPart)
	require.NoError(t, err)
	assert.Equal(t, "see attached", string(text))

	filePart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "shopping_2026-03-02_2026-03-08.csv", filePart.FileName())
	encoded, err := io.ReadAll(filePart)
	require.NoError(t, err)
	for _, line := range strings.Split(string(encoded), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, csv, decoded)

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}
