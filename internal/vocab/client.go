// Package vocab implements the client-side workflows of the vocabulary
// collector: checking a word against the server through the existence
// cache, generating collocations through the AI provider, and submitting
// queued words. All network traffic goes through the resilient HTTP client
// so retry policy is uniform.
package vocab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/phihung0131/vocabulary-extension/internal/apperr"
	"github.com/phihung0131/vocabulary-extension/internal/cache"
	"github.com/phihung0131/vocabulary-extension/internal/httpclient"
	"github.com/phihung0131/vocabulary-extension/internal/models"
	"github.com/phihung0131/vocabulary-extension/internal/queue"
	"github.com/phihung0131/vocabulary-extension/internal/secrets"
	"github.com/phihung0131/vocabulary-extension/internal/store"
)

const (
	apiCheckWord       = "/api/check-word"
	apiAddCollocations = "/api/add-collocations"
	apiCollocations    = "/api/collocations"
	apiExportCSV       = "/api/export-csv"
	apiDeleteAll       = "/api/delete-all"

	// WordCacheTTL is how long a word-existence answer stays valid.
	WordCacheTTL = 24 * time.Hour
	// CollocationCacheTTL is how long generated collocations stay valid.
	CollocationCacheTTL = 7 * 24 * time.Hour

	// APIKeySecret is the secret-store name of the AI provider key.
	APIKeySecret = "ai_api_key"
)

// Client ties the local store, caches, queue and secret store to the
// remote word server and the AI provider.
type Client struct {
	http    *httpclient.Client
	secrets *secrets.SecretStore
	queue   *queue.Queue
	log     *zap.Logger

	// wordCache answers "does the server already have this word".
	wordCache *cache.Cache
	// collocationCache holds AI-generated collocations per word.
	collocationCache *cache.Cache

	serverURL  string
	aiEndpoint string
}

// Config carries the constructor dependencies for Client.
type Config struct {
	Store      store.Store
	HTTP       *httpclient.Client
	Secrets    *secrets.SecretStore
	Logger     *zap.Logger
	ServerURL  string
	AIEndpoint string
}

// New constructs a Client. ServerURL may be empty; operations that need it
// fail with a config error before any I/O.
func New(cfg Config) *Client {
	return &Client{
		http:             cfg.HTTP,
		secrets:          cfg.Secrets,
		queue:            queue.New(cfg.Store),
		log:              cfg.Logger,
		wordCache:        cache.New(cfg.Store, store.TableWordCache, WordCacheTTL),
		collocationCache: cache.New(cfg.Store, store.TableCollocationCache, CollocationCacheTTL),
		serverURL:        cfg.ServerURL,
		aiEndpoint:       cfg.AIEndpoint,
	}
}

// Caches returns the client's cache instances for background sweeping.
func (c *Client) Caches() []*cache.Cache {
	return []*cache.Cache{c.wordCache, c.collocationCache}
}

// Queue returns the pending-word queue.
func (c *Client) Queue() *queue.Queue {
	return c.queue
}

func (c *Client) serverEndpoint(path string) (string, error) {
	if c.serverURL == "" {
		return "", apperr.Config("server URL is not set")
	}
	return c.serverURL + path, nil
}

// CheckWord reports whether the server already knows word. The answer is
// cached for WordCacheTTL, so repeated checks for the same word within a
// day cost no network traffic.
func (c *Client) CheckWord(ctx context.Context, raw string) (bool, error) {
	word, err := SanitizeWord(raw)
	if err != nil {
		return false, err
	}
	endpoint, err := c.serverEndpoint(apiCheckWord)
	if err != nil {
		return false, err
	}

	return cache.GetOrCompute(c.wordCache, word, WordCacheTTL, func() (bool, error) {
		resp, err := httpclient.DoJSON[struct {
			Exists bool `json:"exists"`
		}](ctx, c.http, http.MethodPost, endpoint, map[string]string{"word": word}, httpclient.Options{})
		if err != nil {
			return false, err
		}
		return resp.Exists, nil
	})
}

// AddWord validates raw and enqueues it for submission. Adding a word that
// is already queued overwrites the existing entry.
func (c *Client) AddWord(raw string) (string, error) {
	word, err := SanitizeWord(raw)
	if err != nil {
		return "", err
	}
	if err := c.queue.Add(word); err != nil {
		return "", err
	}
	c.log.Info("queued word", zap.String("word", word))
	return word, nil
}

// Submit pushes every pending queued word to the server: generates
// collocations for the word, posts them, and removes the item on success.
// A failed item stays queued with its error recorded; Submit keeps going
// and returns how many words were submitted.
func (c *Client) Submit(ctx context.Context) (int, error) {
	endpoint, err := c.serverEndpoint(apiAddCollocations)
	if err != nil {
		return 0, err
	}
	items, err := c.queue.List()
	if err != nil {
		return 0, err
	}

	submitted := 0
	for _, item := range items {
		if item.Status == models.StatusProcessing {
			continue
		}
		if err := c.queue.SetStatus(item.Word, models.StatusProcessing, ""); err != nil {
			return submitted, err
		}

		collocations, err := c.GenerateCollocations(ctx, item.Word)
		if err == nil {
			_, err = httpclient.DoJSON[struct {
				InsertedCount int `json:"insertedCount"`
			}](ctx, c.http, http.MethodPost, endpoint,
				map[string]any{"collocations": collocations}, httpclient.Options{})
		}
		if err != nil {
			c.log.Warn("word submission failed", zap.String("word", item.Word), zap.Error(err))
			if serr := c.queue.SetStatus(item.Word, models.StatusFailed, err.Error()); serr != nil {
				return submitted, serr
			}
			continue
		}

		if err := c.queue.Remove(item.Word); err != nil {
			return submitted, err
		}
		submitted++
		c.log.Info("submitted word", zap.String("word", item.Word))
	}
	return submitted, nil
}

// List fetches every collocation stored on the server.
func (c *Client) List(ctx context.Context) ([]models.Collocation, error) {
	endpoint, err := c.serverEndpoint(apiCollocations)
	if err != nil {
		return nil, err
	}
	resp, err := httpclient.DoJSON[struct {
		Data []models.Collocation `json:"data"`
	}](ctx, c.http, http.MethodGet, endpoint, nil, httpclient.Options{})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ExportCSV streams the server's CSV export into w.
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) error {
	endpoint, err := c.serverEndpoint(apiExportCSV)
	if err != nil {
		return err
	}
	payload, err := c.http.Get(ctx, endpoint, httpclient.Options{})
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// DeleteAll removes every collocation from the server and clears both
// local caches, returning the server-reported deletion count.
func (c *Client) DeleteAll(ctx context.Context) (int, error) {
	endpoint, err := c.serverEndpoint(apiDeleteAll)
	if err != nil {
		return 0, err
	}
	resp, err := httpclient.DoJSON[struct {
		DeletedCount int `json:"deletedCount"`
	}](ctx, c.http, http.MethodPost, endpoint, nil, httpclient.Options{})
	if err != nil {
		return 0, err
	}
	if err := c.wordCache.Clear(); err != nil {
		return resp.DeletedCount, err
	}
	if err := c.collocationCache.Clear(); err != nil {
		return resp.DeletedCount, err
	}
	return resp.DeletedCount, nil
}
