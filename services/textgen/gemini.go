// Package textgensvc generates parent-facing messages with the Gemini
// generateContent REST API.
package textgensvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/notify"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

type geminiService struct {
	apiKey string
	model  string
	client *http.Client
	logger core.Logger
}

var _ notify.Generator = (*geminiService)(nil)

func NewGeminiService(conf *core.Config, logger core.Logger) notify.Generator {
	return &geminiService{
		apiKey: conf.TextGen.ApiKey,
		model:  conf.TextGen.Model,
		client: &http.Client{Timeout: conf.TextGen.Timeout},
		logger: logger,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (svc *geminiService) GenerateMessage(ctx context.Context, req notify.Request) (notify.Message, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(req)}}}},
	})
	if err != nil {
		return notify.Message{}, errors.Wrap(err, "encoding generation request")
	}

	url := fmt.Sprintf(geminiEndpoint, svc.model, svc.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return notify.Message{}, errors.Wrap(err, "building generation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(httpReq)
	if err != nil {
		return notify.Message{}, errors.Wrap(err, "calling generation API")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return notify.Message{}, errors.Wrap(err, "reading generation response")
	}

	var parsed geminiResponse
	if err = json.Unmarshal(raw, &parsed); err != nil {
		return notify.Message{}, errors.Wrap(err, "decoding generation response")
	}
	if res.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return notify.Message{}, errors.Errorf("generation API: %d %s", parsed.Error.Code, parsed.Error.Message)
		}
		return notify.Message{}, errors.Errorf("generation API: status %d", res.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return notify.Message{}, errors.New("generation API: empty response")
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return notify.Message{}, errors.New("generation API: blank message")
	}
	return notify.Message{Message: text}, nil
}

func buildPrompt(req notify.Request) string {
	b := new(strings.Builder)
	b.WriteString("You are a school administrator writing a short, warm message to a parent.\n")
	fmt.Fprintf(b, "Student name: %s\n", req.StudentName)
	if req.StudentPerformance != "" {
		fmt.Fprintf(b, "Academic performance: %s\n", req.StudentPerformance)
	}
	if req.StudentAttendance != "" {
		fmt.Fprintf(b, "Attendance: %s\n", req.StudentAttendance)
	}
	if req.StudentActivities != "" {
		fmt.Fprintf(b, "Recent activities: %s\n", req.StudentActivities)
	}
	b.WriteString("Write 3 to 5 sentences addressed to the parent. " +
		"Mention the student by name, keep the tone encouraging and specific, " +
		"and do not include a subject line or signature.")
	return b.String()
}
