// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/grant-mapper/internal/httputil"
	"github.com/pdiddy/grant-mapper/pkg/types"
)

// systemPrompt constrains the scoring backend to concise topical assessment.
// Investigator and temporal alignment are established before any judgment
// call, so the model is asked only about content.
const systemPrompt = "You are a research analyst assessing topical relationships between grants and publications. Be concise and focus only on content alignment."

// judgmentPromptTmpl is the user message sent to the scoring backend for one
// (publication, candidate) pair. It requests a strictly-JSON reply on the
// five-point confidence scale.
var judgmentPromptTmpl = template.Must(template.New("judgment").Parse(`You are analyzing a pre-filtered publication-grant pair that has already been confirmed to have:
- Matching investigators: {{.Matches}}
- Valid timing alignment (publication within grant period plus two years)

Now assess the TOPICAL RELATIONSHIP between this grant and publication:

GRANT:
Title: {{.GrantTitle}}
Description: {{.GrantDescription}}

PUBLICATION:
Title: {{.PublicationTitle}}
Publication Year: {{.PublicationYear}}

Based on the research topics and content, rate the likelihood this publication resulted from this grant:

- Very High: Perfect topical alignment, publication clearly addresses grant objectives
- High: Strong topical overlap, publication likely resulted from grant work
- Medium: Moderate topical connection, possible relationship
- Low: Minimal topical alignment, unlikely direct relationship
- Very Low: No clear topical connection despite investigator/timing match

Respond with only a JSON object:
{"confidence": "Very High|High|Medium|Low|Very Low", "reasoning": "Brief explanation focusing on topical alignment"}
`))

// promptData feeds judgmentPromptTmpl.
type promptData struct {
	Matches          string
	GrantTitle       string
	GrantDescription string
	PublicationTitle string
	PublicationYear  int
}

// renderPrompt builds the user message for one candidate pairing.
func renderPrompt(pub types.Publication, cand types.CandidateGrant) (string, error) {
	pairs := make([]string, len(cand.Matches))
	for i, m := range cand.Matches {
		pairs[i] = fmt.Sprintf("%s -> %s", m.Author, m.Investigator)
	}

	desc := cand.Grant.Description
	if desc == "" {
		desc = "Not provided"
	}

	var buf bytes.Buffer
	err := judgmentPromptTmpl.Execute(&buf, promptData{
		Matches:          strings.Join(pairs, ", "),
		GrantTitle:       cand.Grant.Title,
		GrantDescription: desc,
		PublicationTitle: pub.Title,
		PublicationYear:  pub.Year,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Backend abstracts the external scoring service so tests can supply a mock.
// Judge returns the raw text of the backend's reply for one rendered prompt.
type Backend interface {
	Judge(ctx context.Context, system, user string) (string, error)
}

// ChatBackend calls an OpenAI-style chat-completion endpoint. The request
// carries a system instruction, the judgment prompt, a low sampling
// temperature, a small token budget, and non-streaming delivery.
type ChatBackend struct {
	Config types.JudgeConfig
	Client *http.Client
}

// chatRequest is the request body for the chat-completion endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

// chatMessage is a single message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the reply the judge consumes.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Judge posts one judgment request and returns the assistant's reply text.
// Non-2xx statuses surface as *httputil.StatusError so the caller can
// classify rate limiting.
func (b *ChatBackend) Judge(ctx context.Context, system, user string) (string, error) {
	temperature := b.Config.Temperature
	if temperature == 0 {
		temperature = 0.1
	}
	maxTokens := b.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}

	req := chatRequest{
		Model: b.Config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      false,
	}

	headers := map[string]string{}
	if b.Config.Authorization != "" {
		headers["Authorization"] = b.Config.Authorization
	}
	if b.Config.UserAgent != "" {
		headers["User-Agent"] = b.Config.UserAgent
	}

	body, err := httputil.PostJSON(ctx, b.client(), b.Config.BaseURL, headers, req)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding scoring response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("scoring backend returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (b *ChatBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	if b.Config.Timeout > 0 {
		return &http.Client{Timeout: b.Config.Timeout}
	}
	return http.DefaultClient
}
