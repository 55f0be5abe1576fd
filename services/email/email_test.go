package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/tests"
)

func publishedMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Grade 10", Address: "grade-10@classes.localhost"}},
		Subject:      "New quiz: Algebra",
		TemplateName: "assignment_published",
		TemplateData: map[string]interface{}{
			"ID":          "a1",
			"Kind":        "quiz",
			"Title":       "Algebra",
			"Subject":     "Math",
			"Grade":       "10",
			"TotalPoints": 20.0,
			"DueDate":     "",
		},
	}
}

func TestConsoleServiceMock(t *testing.T) {
	conf := core.NewTestConfig()
	logger := new(testutil.LoggerMock)
	svc := NewConsoleServiceMock(conf, testutil.EmailTemplates(t, conf), logger)

	svc.SendMessages(
		publishedMessage(),
		&core.EmailMessage{Subject: "nobody"},          // no recipient: dropped
		&core.EmailMessage{To: publishedMessage().To}, // no content: dropped
	)

	require.Empty(t, logger.Entries)
	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Algebra")
	assert.Contains(t, sent[0].TextContent, conf.FrontendBaseURL+"/assignments/a1")
	assert.Contains(t, sent[0].HTMLContent, "<html")
}

func TestConsoleService_unknownTemplateData(t *testing.T) {
	conf := core.NewTestConfig()
	logger := new(testutil.LoggerMock)
	svc := NewConsoleServiceMock(conf, testutil.EmailTemplates(t, conf), logger)

	msg := publishedMessage()
	msg.TemplateData = map[string]interface{}{"Title": "Algebra"} // missing keys fail in test mode
	svc.SendMessages(msg)

	assert.Empty(t, svc.Sent())
	assert.Equal(t, []string{"error"}, logger.Levels())
}

func TestConsoleService_format(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, testutil.EmailTemplates(t, conf), new(testutil.LoggerMock))

	msg := core.EmailMessage{To: publishedMessage().To, Subject: "Report", BodyStr: "see attached"}
	require.NoError(t, msg.Attach(strings.NewReader("<svg/>"), "report.svg", "image/svg+xml"))
	require.NoError(t, msg.Render(nil))

	body, err := svc.format(msg)
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [Masomo] Report\r\n")
	assert.Contains(t, body, "To: \"Grade 10\" <grade-10@classes.localhost>\r\n")
	assert.Contains(t, body, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, body, "attachment; filename=report.svg")
	assert.Contains(t, body, "see attached")
}

func TestSendgridService(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "sg-key"
	logger := new(testutil.LoggerMock)
	svc := NewSendgridService(conf, testutil.EmailTemplates(t, conf), logger).(*sendgridService)

	var got []rest.Request
	origSend := sendRequest
	defer func() { sendRequest = origSend }()

	tests := []struct {
		name       string
		status     int
		wantLevels []string
	}{
		{name: "accepted", status: 202, wantLevels: nil},
		{name: "rejected", status: 400, wantLevels: []string{"error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, logger.Entries = nil, nil
			sendRequest = func(req rest.Request) (*rest.Response, error) {
				got = append(got, req)
				return &rest.Response{StatusCode: tt.status}, nil
			}

			svc.sendMessage(publishedMessage())

			require.Len(t, got, 1)
			assert.Equal(t, "Bearer sg-key", got[0].Headers["Authorization"])
			assert.True(t, bytes.Contains(got[0].Body, []byte(`"subject":"[Masomo] New quiz: Algebra"`)))
			assert.True(t, bytes.Contains(got[0].Body, []byte(`grade-10@classes.localhost`)))
			assert.Equal(t, tt.wantLevels, logger.Levels())
		})
	}
}

func TestSendgridService_async(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSendgridService(conf, testutil.EmailTemplates(t, conf), new(testutil.LoggerMock))

	done := make(chan struct{})
	origSend := sendRequest
	defer func() { sendRequest = origSend }()
	sendRequest = func(req rest.Request) (*rest.Response, error) {
		close(done)
		return &rest.Response{StatusCode: 202}, nil
	}

	svc.SendMessages(publishedMessage())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("message not sent")
	}
}
