package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/ghost-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/ghost-client/internal/http"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// ImagesClient implements ghost.ImagesClient.
type ImagesClient struct {
	transport *internalhttp.Client
}

// NewImagesClient creates an images client.
func NewImagesClient(transport *internalhttp.Client) *ImagesClient {
	return &ImagesClient{transport: transport}
}

// Upload implements ghost.ImagesClient.Upload. The whole file is buffered
// into the multipart body up front so a retried request resends identical
// bytes.
func (c *ImagesClient) Upload(ctx context.Context, input ghost.UploadInput) (string, error) {
	name, content, err := resolveUploadSource(input)
	if err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := createUploadPart(writer, name)
	if err != nil {
		return "", fmt.Errorf("creating multipart field: %w", err)
	}

	_, err = part.Write(content)
	if err != nil {
		return "", fmt.Errorf("writing upload body: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	resp, err := c.transport.Do(ctx, &internalhttp.Request{
		Method:      http.MethodPost,
		Path:        constants.UploadEndpoint,
		RawBody:     body.Bytes(),
		ContentType: writer.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}

	return decodeUploadPath(resp.Body), nil
}

// resolveUploadSource validates the input and reads the file content. A file
// opened from Path is always closed, whether the read succeeds or not.
func resolveUploadSource(input ghost.UploadInput) (string, []byte, error) {
	sources := 0
	if input.Path != "" {
		sources++
	}

	if input.Reader != nil {
		sources++
	}

	if input.Data != nil {
		sources++
	}

	switch {
	case sources == 0:
		return "", nil, ghost.ErrNoUploadSource
	case sources > 1:
		return "", nil, ghost.ErrAmbiguousUploadSource
	}

	if input.Path != "" {
		file, err := os.Open(input.Path)
		if err != nil {
			return "", nil, fmt.Errorf("opening upload file: %w", err)
		}

		defer func() { _ = file.Close() }()

		content, err := io.ReadAll(file)
		if err != nil {
			return "", nil, fmt.Errorf("reading upload file: %w", err)
		}

		name := input.Name
		if name == "" {
			name = filepath.Base(input.Path)
		}

		return name, content, nil
	}

	if input.Name == "" {
		return "", nil, ghost.ErrUploadNameRequired
	}

	if input.Reader != nil {
		content, err := io.ReadAll(input.Reader)
		if err != nil {
			return "", nil, fmt.Errorf("reading upload source: %w", err)
		}

		return input.Name, content, nil
	}

	return input.Name, input.Data, nil
}

// createUploadPart opens the form field with a content type inferred from
// the file extension.
func createUploadPart(writer *multipart.Writer, name string) (io.Writer, error) {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		constants.UploadFieldName, name))
	header.Set("Content-Type", contentType)

	return writer.CreatePart(header)
}

// decodeUploadPath unwraps the server-relative path from the response body,
// which arrives as a JSON-encoded string.
func decodeUploadPath(body []byte) string {
	var path string

	err := json.Unmarshal(body, &path)
	if err != nil {
		return strings.Trim(strings.TrimSpace(string(body)), `"`)
	}

	return path
}
