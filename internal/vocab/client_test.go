package vocab

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phihung0131/vocabulary-extension/internal/apperr"
	"github.com/phihung0131/vocabulary-extension/internal/httpclient"
	"github.com/phihung0131/vocabulary-extension/internal/models"
	"github.com/phihung0131/vocabulary-extension/internal/secrets"
	"github.com/phihung0131/vocabulary-extension/internal/store"
)

// roundTripperFunc fakes the HTTP transport.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, v any) *http.Response {
	body, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// newTestVocab builds a client over a memory store and the given fake
// transport.
func newTestVocab(t *testing.T, serverURL string, rt roundTripperFunc) (*Client, *secrets.SecretStore) {
	t.Helper()
	backing := store.NewMemoryStore()
	secretStore := secrets.New(backing, "test-install", zap.NewNop())
	client := New(Config{
		Store:      backing,
		HTTP:       httpclient.New(&http.Client{Transport: rt}, zap.NewNop()),
		Secrets:    secretStore,
		Logger:     zap.NewNop(),
		ServerURL:  serverURL,
		AIEndpoint: "http://ai.example.com/v1/generate",
	})
	return client, secretStore
}

func TestCheckWord_CachedAfterFirstCall(t *testing.T) {
	calls := 0
	client, _ := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		calls++
		require.Equal(t, "/api/check-word", req.URL.Path)
		var body struct {
			Word string `json:"word"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "serendipity", body.Word)
		return jsonResponse(200, map[string]bool{"exists": true}), nil
	})

	exists, err := client.CheckWord(context.Background(), "Serendipity")
	require.NoError(t, err)
	assert.True(t, exists)

	// Second check is served from the existence cache.
	exists, err = client.CheckWord(context.Background(), "serendipity")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, calls)
}

func TestCheckWord_NoServerURL(t *testing.T) {
	client, _ := newTestVocab(t, "", func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := client.CheckWord(context.Background(), "word")
	assert.True(t, apperr.IsKind(err, apperr.KindConfig), "err = %v", err)
}

func TestCheckWord_InvalidInputNeverHitsNetwork(t *testing.T) {
	client, _ := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := client.CheckWord(context.Background(), "!!!")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "err = %v", err)
}

func TestAddWord_CaseFoldCollision(t *testing.T) {
	client, _ := newTestVocab(t, "", nil)

	word, err := client.AddWord("run a marathon")
	require.NoError(t, err)
	assert.Equal(t, "run a marathon", word)

	word, err = client.AddWord("Run A Marathon")
	require.NoError(t, err)
	assert.Equal(t, "run a marathon", word)

	items, err := client.Queue().List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusPending, items[0].Status)
}

func TestGenerateCollocations_NoAPIKey(t *testing.T) {
	client, _ := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := client.GenerateCollocations(context.Background(), "marathon")
	assert.True(t, apperr.IsKind(err, apperr.KindConfig), "err = %v", err)
}

func TestGenerateCollocations_ParsesEmbeddedJSON(t *testing.T) {
	calls := 0
	generated := "Sure! Here you go:\n```json\n" +
		`{"results":[{"collocation":"run a marathon","ipa":"/rʌn ə ˈmærəθən/","meaning":"take part in a marathon race","synonyms":["complete a marathon"]}]}` +
		"\n```"
	client, secretStore := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		calls++
		require.Equal(t, "ai.example.com", req.URL.Host)
		assert.Equal(t, "secret-key", req.URL.Query().Get("key"))
		return jsonResponse(200, map[string]string{"generatedText": generated}), nil
	})
	require.NoError(t, secretStore.Set(APIKeySecret, "secret-key"))

	collocations, err := client.GenerateCollocations(context.Background(), "Marathon")
	require.NoError(t, err)
	require.Len(t, collocations, 1)
	assert.Equal(t, "marathon", collocations[0].Word)
	assert.Equal(t, "run a marathon", collocations[0].Collocation)
	assert.Equal(t, "take part in a marathon race", collocations[0].Meaning)

	// Second generation is served from the collocation cache.
	_, err = client.GenerateCollocations(context.Background(), "marathon")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGenerateCollocations_GarbageText(t *testing.T) {
	client, secretStore := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, map[string]string{"generatedText": "no json here"}), nil
	})
	require.NoError(t, secretStore.Set(APIKeySecret, "secret-key"))

	_, err := client.GenerateCollocations(context.Background(), "marathon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestSubmit_SuccessRemovesFromQueue(t *testing.T) {
	var added []models.Collocation
	client, secretStore := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Host == "ai.example.com":
			return jsonResponse(200, map[string]string{
				"generatedText": `{"results":[{"collocation":"vivid imagination"}]}`,
			}), nil
		case req.URL.Path == "/api/add-collocations":
			var body struct {
				Collocations []models.Collocation `json:"collocations"`
			}
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			added = append(added, body.Collocations...)
			return jsonResponse(200, map[string]int{"insertedCount": len(body.Collocations)}), nil
		default:
			t.Fatalf("unexpected request: %s", req.URL)
			return nil, nil
		}
	})
	require.NoError(t, secretStore.Set(APIKeySecret, "secret-key"))

	_, err := client.AddWord("imagination")
	require.NoError(t, err)

	n, err := client.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, added, 1)
	assert.Equal(t, "imagination", added[0].Word)

	items, err := client.Queue().List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubmit_FailureKeepsItemWithError(t *testing.T) {
	client, secretStore := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "ai.example.com" {
			return jsonResponse(200, map[string]string{
				"generatedText": `{"results":[{"collocation":"heavy rain"}]}`,
			}), nil
		}
		// Server rejects the submission outright.
		return jsonResponse(400, map[string]string{"error": "bad request"}), nil
	})
	require.NoError(t, secretStore.Set(APIKeySecret, "secret-key"))

	_, err := client.AddWord("rain")
	require.NoError(t, err)

	n, err := client.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	items, err := client.Queue().List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusFailed, items[0].Status)
	assert.NotEmpty(t, items[0].Error)
}

func TestList(t *testing.T) {
	client, _ := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/collocations", req.URL.Path)
		return jsonResponse(200, map[string]any{
			"data": []models.Collocation{{Word: "rain", Collocation: "heavy rain"}},
		}), nil
	})

	collocations, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, collocations, 1)
	assert.Equal(t, "heavy rain", collocations[0].Collocation)
}

func TestExportCSV(t *testing.T) {
	const csv = "word,collocation\nrain,heavy rain\n"
	client, _ := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/export-csv", req.URL.Path)
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(csv)),
			Header:     http.Header{"Content-Type": []string{"text/csv"}},
		}, nil
	})

	var buf bytes.Buffer
	require.NoError(t, client.ExportCSV(context.Background(), &buf))
	assert.Equal(t, csv, buf.String())
}

func TestDeleteAll_ClearsCaches(t *testing.T) {
	client, _ := newTestVocab(t, "http://server.example.com", func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/check-word":
			return jsonResponse(200, map[string]bool{"exists": true}), nil
		case "/api/delete-all":
			return jsonResponse(200, map[string]int{"deletedCount": 5}), nil
		default:
			t.Fatalf("unexpected request: %s", req.URL)
			return nil, nil
		}
	})

	// Warm the existence cache.
	_, err := client.CheckWord(context.Background(), "rain")
	require.NoError(t, err)

	n, err := client.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// The cached answer was dropped: the next check hits the server again.
	var out bool
	found, err := client.wordCache.Get("rain", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
