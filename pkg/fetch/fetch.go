package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ProgressFunc is a callback for download progress.
// total is -1 when the server did not announce a content length.
type ProgressFunc func(downloaded, total int64)

// BytesWithProgress downloads the full payload at url into memory, calling
// progress (if non-nil) as bytes arrive. There is no retry.
func BytesWithProgress(ctx context.Context, client *http.Client, url string, progress ProgressFunc) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code downloading %s: %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if progress != nil {
		body = &progressReader{Reader: resp.Body, Total: resp.ContentLength, Progress: progress}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if len(data) == 0 {
		return nil, errors.Errorf("no content downloaded from %s", url)
	}

	return data, nil
}

// progressReader wraps an io.Reader to report progress
type progressReader struct {
	Reader   io.Reader
	Total    int64
	Current  int64
	Progress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	if n > 0 {
		pr.Current += int64(n)
		pr.Progress(pr.Current, pr.Total)
	}
	return n, err
}
