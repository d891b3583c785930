package vocab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/phihung0131/vocabulary-extension/internal/apperr"
	"github.com/phihung0131/vocabulary-extension/internal/cache"
	"github.com/phihung0131/vocabulary-extension/internal/httpclient"
	"github.com/phihung0131/vocabulary-extension/internal/models"
)

// generatedResult is the JSON object the AI provider is asked to embed in
// its generated text.
type generatedResult struct {
	Results []struct {
		Collocation string   `json:"collocation"`
		IPA         string   `json:"ipa,omitempty"`
		Meaning     string   `json:"meaning,omitempty"`
		Synonyms    []string `json:"synonyms,omitempty"`
	} `json:"results"`
}

// buildPrompt renders the generation prompt for word.
func buildPrompt(word string) string {
	return fmt.Sprintf(`List 5 common English collocations for the word %q. `+
		`Respond with a JSON object of the shape `+
		`{"results":[{"collocation":"...","ipa":"...","meaning":"...","synonyms":["..."]}]} `+
		`and nothing else.`, word)
}

// GenerateCollocations returns AI-generated collocations for raw, serving
// from the collocation cache when possible. The AI API key comes from the
// secret store; its absence is a config error detected before any I/O.
func (c *Client) GenerateCollocations(ctx context.Context, raw string) ([]models.Collocation, error) {
	word, err := SanitizeWord(raw)
	if err != nil {
		return nil, err
	}
	if c.aiEndpoint == "" {
		return nil, apperr.Config("AI endpoint is not set")
	}
	key, ok := c.secrets.Get(APIKeySecret)
	if !ok {
		return nil, apperr.Config("AI API key is not set")
	}

	return cache.GetOrCompute(c.collocationCache, word, CollocationCacheTTL, func() ([]models.Collocation, error) {
		endpoint := c.aiEndpoint + "?key=" + url.QueryEscape(key)
		resp, err := httpclient.DoJSON[struct {
			GeneratedText string `json:"generatedText"`
		}](ctx, c.http, http.MethodPost, endpoint,
			map[string]string{"prompt": buildPrompt(word)}, httpclient.Options{})
		if err != nil {
			return nil, err
		}
		return parseGenerated(word, resp.GeneratedText)
	})
}

// parseGenerated extracts the embedded JSON object from the provider's
// generated text. Providers wrap the object in prose or code fences, so the
// object is located by scanning for the outermost brace pair.
func parseGenerated(word, text string) ([]models.Collocation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in generated text for %q", word)
	}

	var result generatedResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("decode generated collocations for %q: %w", word, err)
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("empty generation result for %q", word)
	}

	collocations := make([]models.Collocation, 0, len(result.Results))
	for _, r := range result.Results {
		if strings.TrimSpace(r.Collocation) == "" {
			continue
		}
		collocations = append(collocations, models.Collocation{
			Word:        word,
			Collocation: strings.TrimSpace(r.Collocation),
			IPA:         r.IPA,
			Meaning:     r.Meaning,
			Synonyms:    r.Synonyms,
		})
	}
	if len(collocations) == 0 {
		return nil, fmt.Errorf("empty generation result for %q", word)
	}
	return collocations, nil
}
