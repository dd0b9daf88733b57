package printing

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Provider delivers a rendered slip to a physical printer or its stand-in.
type Provider interface {
	Print(ctx context.Context, jobID, text string) error
}

func NewProvider(kind string) Provider {
	switch kind {
	case "", "log":
		return logProvider{}
	case "file":
		dir := os.Getenv("PRINT_SPOOL_DIR")
		if dir == "" {
			dir = os.TempDir()
		}
		return fileProvider{dir: dir}
	case "webhook":
		return webhookProvider{
			url:    os.Getenv("PRINT_WEBHOOK_URL"),
			client: &http.Client{Timeout: 5 * time.Second},
		}
	default:
		return logProvider{}
	}
}

type logProvider struct{}

func (logProvider) Print(ctx context.Context, jobID, text string) error {
	log.Printf("print job=%s\n%s", jobID, text)
	return nil
}

type fileProvider struct {
	dir string
}

func (p fileProvider) Print(ctx context.Context, jobID, text string) error {
	path := filepath.Join(p.dir, jobID+".txt")
	return os.WriteFile(path, []byte(text), 0o644)
}

type webhookProvider struct {
	url    string
	client *http.Client
}

func (p webhookProvider) Print(ctx context.Context, jobID, text string) error {
	if p.url == "" {
		return fmt.Errorf("PRINT_WEBHOOK_URL is not set")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader([]byte(text)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Print-Job-ID", jobID)
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("printer bridge returned %d", resp.StatusCode)
	}
	return nil
}
