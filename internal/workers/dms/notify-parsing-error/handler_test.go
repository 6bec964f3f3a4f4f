// internal/workers/dms/notify-parsing-error/handler_test.go
package notifyparsingerror

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"dms-workers/internal/common/aws"
	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type mockSES struct {
	sent []*ses.SendEmailInput
	err  error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, params)
	return &ses.SendEmailOutput{MessageId: awssdk.String("ses-123")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func setupTest(t *testing.T, enabled bool, svc *mockSES) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	return NewHandler(
		&Config{EmailEnabled: enabled, Timeout: 5 * time.Second},
		aws.NewMailerWith(svc, "support@passculture.app"),
		errors.NewErrorHandler(log, time.Second),
		log,
	)
}

func createInput() *Input {
	return &Input{
		ProcedureID:   201201,
		ApplicationID: 42,
		Email:         "cosette@example.com",
		Errors: map[string]string{
			"postal_code": "Strasbourg",
			"birth_date":  "hier",
			"custom":      "<b>x</b>",
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SendsEmail(t *testing.T) {
	svc := &mockSES{}
	handler := setupTest(t, true, svc)

	output, err := handler.Execute(context.Background(), createInput())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, "ses-123", output.MessageID)
	assert.NotEmpty(t, output.NotificationID)
	_, err = time.Parse(time.RFC3339, output.SentAt)
	assert.NoError(t, err)

	require.Len(t, svc.sent, 1)
	sent := svc.sent[0]
	assert.Equal(t, []string{"cosette@example.com"}, sent.Destination.ToAddresses)
	assert.Equal(t, "Votre dossier pass Culture n°42 est incomplet", awssdk.ToString(sent.Message.Subject.Data))

	text := awssdk.ToString(sent.Message.Body.Text.Data)
	assert.Contains(t, text, "- Date de naissance : « hier »")
	assert.Contains(t, text, "- Code postal : « Strasbourg »")
	assert.Contains(t, text, "- custom : « <b>x</b> »")
	assert.Less(t, strings.Index(text, "Date de naissance"), strings.Index(text, "Code postal"))

	html := awssdk.ToString(sent.Message.Body.Html.Data)
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
	assert.NotContains(t, html, "<b>x</b>")
}

func TestHandler_Execute_Disabled(t *testing.T) {
	svc := &mockSES{}
	handler := setupTest(t, false, svc)

	output, err := handler.Execute(context.Background(), createInput())

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, output.MessageID)
	assert.Empty(t, svc.sent)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_MissingEmail(t *testing.T) {
	handler := setupTest(t, true, &mockSES{})
	input := createInput()
	input.Email = ""

	_, err := handler.Execute(context.Background(), input)

	assert.Equal(t, errors.ErrCodeInvalidInput, errors.FromDMSError(err).Code)
}

func TestHandler_Execute_SendFails(t *testing.T) {
	handler := setupTest(t, true, &mockSES{err: stderrors.New("Throttling")})

	_, err := handler.Execute(context.Background(), createInput())

	stdErr := errors.FromDMSError(err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
