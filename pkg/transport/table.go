package transport

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/decoder"
	"github.com/killallgit/ada/pkg/provider"
)

// Entry pairs a provider's transport with the decoder for its wire format.
type Entry struct {
	Dispatcher Dispatcher
	Decoder    decoder.Decoder
}

// Table maps providers to their entries.
type Table struct {
	mu      sync.RWMutex
	entries map[provider.Provider]Entry
}

type tableOptions struct {
	client       *http.Client
	googleModels ModelFactory
}

// TableOption configures NewTable.
type TableOption func(*tableOptions)

func WithHTTPClient(c *http.Client) TableOption {
	return func(o *tableOptions) { o.client = c }
}

func WithGoogleModels(f ModelFactory) TableOption {
	return func(o *tableOptions) { o.googleModels = f }
}

// newStreamingClient bounds connecting and waiting for response headers by
// timeout. Bodies stream for as long as the request context allows.
func newStreamingClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

func NewEmptyTable() *Table {
	return &Table{entries: make(map[provider.Provider]Entry)}
}

// NewTable builds the entries for every provider from cfg.
func NewTable(cfg *config.Config, opts ...TableOption) (*Table, error) {
	o := tableOptions{client: newStreamingClient(cfg.HTTP.Timeout)}
	for _, opt := range opts {
		opt(&o)
	}

	dispatchers := map[provider.Provider]Dispatcher{
		provider.OpenAI:    NewOpenAI(cfg.Providers.OpenAI, o.client),
		provider.Anthropic: NewAnthropic(cfg.Providers.Anthropic, o.client),
		provider.Groq:      NewGroq(cfg.Providers.Groq, o.client),
		provider.Google:    NewGoogle(cfg.Providers.Google, o.googleModels),
		provider.Local:     NewLocal(cfg.Providers.Local, o.client),
	}

	decOpts := decoder.Options{RegexFallback: cfg.Stream.RegexFallback}
	t := NewEmptyTable()
	for _, p := range provider.All() {
		dec, err := decoder.New(p, decOpts)
		if err != nil {
			return nil, err
		}
		t.Register(p, Entry{Dispatcher: dispatchers[p], Decoder: dec})
	}
	return t, nil
}

func (t *Table) Register(p provider.Provider, e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[p] = e
}

func (t *Table) Lookup(p provider.Provider) (Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[p]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", provider.ErrUnknownProvider, p)
	}
	return e, nil
}
