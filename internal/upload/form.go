// Package upload builds the multipart submissions shared by the publishing
// clients and turns upload responses into results or publish errors.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/lucko/mod-publish/internal/errdefs"
)

// JarContentType is the content type of every uploaded archive.
const JarContentType = "application/java-archive"

// Form is a multipart body ready to send.
type Form struct {
	Body        *bytes.Buffer
	ContentType string
}

// NewForm encodes metadata as JSON under metaField and attaches the file at
// filePath as the "file" part under fileName. The file bytes are copied
// unmodified.
func NewForm(metaField string, metadata any, filePath, fileName string) (*Form, error) {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", metaField, err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(metaField, string(meta)); err != nil {
		return nil, fmt.Errorf("writing %s part: %w", metaField, err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(fileName)))
	h.Set("Content-Type", JarContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copying artifact: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}
	return &Form{Body: &buf, ContentType: w.FormDataContentType()}, nil
}

// Post sends form to url and decodes a 2xx JSON response into out. Any other
// outcome is returned as an *errdefs.PublishError carrying the response
// status, body and headers.
func Post(ctx context.Context, client *http.Client, publisher, url string, form *Form, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, form.Body)
	if err != nil {
		return &errdefs.PublishError{Publisher: publisher, Err: fmt.Errorf("creating request: %w", err)}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", form.ContentType)
	req.Header.Set("Accept", "application/json")
	req.ContentLength = int64(form.Body.Len())

	resp, err := client.Do(req)
	if err != nil {
		return &errdefs.PublishError{Publisher: publisher, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errdefs.PublishError{
			Publisher: publisher,
			Status:    resp.StatusCode,
			Header:    resp.Header,
			Err:       fmt.Errorf("reading response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errdefs.PublishError{
			Publisher: publisher,
			Status:    resp.StatusCode,
			Body:      string(body),
			Header:    resp.Header,
		}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &errdefs.PublishError{
				Publisher: publisher,
				Status:    resp.StatusCode,
				Body:      string(body),
				Header:    resp.Header,
				Err:       fmt.Errorf("parsing response JSON: %w", err),
			}
		}
	}
	return nil
}
