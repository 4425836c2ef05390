package gemini

import (
	"encoding/base64"
	"fmt"
	"strings"

	"dzlegal-backend/models"
)

type restPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *restInlineData `json:"inlineData,omitempty"`
}

type restInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type restGenerationConfig struct {
	Temperature *float32 `json:"temperature,omitempty"`
}

type generateRequest struct {
	SystemInstruction *restContent          `json:"systemInstruction,omitempty"`
	Contents          []restContent         `json:"contents"`
	Tools             []restTool            `json:"tools,omitempty"`
	GenerationConfig  *restGenerationConfig `json:"generationConfig,omitempty"`
}

type groundingChunk struct {
	Web *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"web,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason      string `json:"finishReason,omitempty"`
		GroundingMetadata *struct {
			GroundingChunks []groundingChunk `json:"groundingChunks"`
		} `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

func buildRequestBody(req Request, grounded bool) generateRequest {
	parts := make([]restPart, 0, len(req.Attachments)+1)
	for _, a := range req.Attachments {
		parts = append(parts, restPart{InlineData: &restInlineData{
			MimeType: a.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(a.Data),
		}})
	}
	parts = append(parts, restPart{Text: req.Text})

	body := generateRequest{
		Contents: []restContent{{Role: "user", Parts: parts}},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &restContent{Parts: []restPart{{Text: req.SystemInstruction}}}
	}
	if grounded {
		body.Tools = []restTool{{GoogleSearch: &struct{}{}}}
	}
	if req.Temperature != nil {
		body.GenerationConfig = &restGenerationConfig{Temperature: req.Temperature}
	}
	return body
}

func parseResponse(apiResp *generateResponse) (*Response, error) {
	if apiResp.Error.Message != "" {
		return nil, fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}
	if apiResp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, apiResp.PromptFeedback.BlockReason)
	}
	if len(apiResp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	candidate := apiResp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			return nil, fmt.Errorf("%w (finish reason: %s)", ErrEmptyResponse, candidate.FinishReason)
		}
		return nil, ErrEmptyResponse
	}

	var sources []models.Source
	if candidate.GroundingMetadata != nil {
		sources = extractSources(candidate.GroundingMetadata.GroundingChunks)
	}
	return &Response{Text: text.String(), Sources: sources}, nil
}

// extractSources turns web grounding chunks into citations. Chunks without a
// URI are dropped and a missing title falls back to the default label.
func extractSources(chunks []groundingChunk) []models.Source {
	sources := make([]models.Source, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, models.Source{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}
	return normalizeSources(sources)
}

func normalizeSources(in []models.Source) []models.Source {
	out := make([]models.Source, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		if strings.TrimSpace(s.Title) == "" {
			s.Title = models.DefaultSourceTitle
		}
		out = append(out, s)
	}
	return out
}
