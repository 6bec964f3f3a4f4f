// internal/workers/dms/notify-parsing-error/handler.go
package notifyparsingerror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"text/template"
	"time"

	"dms-workers/internal/common/aws"
	"dms-workers/internal/common/errors"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/dms"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType         = "dms-notify-parsing-error"
	notificationType = "dms_parsing_error"
)

const subject = "Votre dossier pass Culture n°%d est incomplet"

var textBody = template.Must(template.New("text").Parse(`Bonjour,

Certaines informations de votre dossier n°{{.ApplicationID}} n'ont pas pu être prises en compte :
{{range .Fields}}
- {{.Label}} : « {{.Value}} »{{end}}

Merci de corriger ces informations directement sur votre dossier Démarches Simplifiées.

L'équipe pass Culture
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<p>Bonjour,</p>
<p>Certaines informations de votre dossier n°{{.ApplicationID}} n'ont pas pu être prises en compte :</p>
<ul>{{range .Fields}}<li>{{.Label}} : « {{.Value}} »</li>{{end}}</ul>
<p>Merci de corriger ces informations directement sur votre dossier Démarches Simplifiées.</p>
<p>L'équipe pass Culture</p>
`))

type Mailer interface {
	Send(ctx context.Context, email aws.Email) (string, error)
}

type Handler struct {
	config *Config
	mailer Mailer
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, mailer Mailer, errHandler *errors.ErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		mailer: mailer,
		errors: errHandler,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleJob(context.Background(), client, job)
}

func (h *Handler) HandleJob(ctx context.Context, client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(ctx, client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if input.Email == "" {
		return nil, errors.NewInvalidInputError("email is required")
	}
	if !h.config.EmailEnabled || h.mailer == nil {
		h.logger.Info("Email notifications disabled", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		return output, nil
	}

	email, err := renderEmail(input)
	if err != nil {
		return nil, fmt.Errorf("render parsing error email: %w", err)
	}

	messageID, err := h.mailer.Send(ctx, email)
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(notificationType, err)
	}

	output.Status = StatusSent
	output.MessageID = messageID
	h.logger.Info("Parsing error notification sent", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"procedureId":   input.ProcedureID,
		"messageId":     messageID,
	})
	return output, nil
}

type fieldError struct {
	Label string
	Value string
}

func renderEmail(input *Input) (aws.Email, error) {
	keys := make([]string, 0, len(input.Errors))
	for key := range input.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	data := struct {
		ApplicationID int
		Fields        []fieldError
	}{ApplicationID: input.ApplicationID}
	for _, key := range keys {
		label, ok := fieldLabels[dms.FieldKey(key)]
		if !ok {
			label = key
		}
		data.Fields = append(data.Fields, fieldError{Label: label, Value: input.Errors[key]})
	}

	var text, html bytes.Buffer
	if err := textBody.Execute(&text, data); err != nil {
		return aws.Email{}, err
	}
	if err := htmlBody.Execute(&html, data); err != nil {
		return aws.Email{}, err
	}

	return aws.Email{
		To:      []string{input.Email},
		Subject: fmt.Sprintf(subject, input.ApplicationID),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
