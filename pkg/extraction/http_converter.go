package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HTTPConverter talks to a docling-style document conversion service over
// HTTP. The service accepts a multipart file upload and returns the document
// rendered as markdown plus a plain-text export.
type HTTPConverter struct {
	BaseURL string
	Client  *http.Client
}

var _ Converter = &HTTPConverter{}

func NewHTTPConverter(baseURL string) *HTTPConverter {
	return &HTTPConverter{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 300 * time.Second, // large PDFs convert slowly
		},
	}
}

type convertResponse struct {
	Document struct {
		MdContent   string `json:"md_content"`
		TextContent string `json:"text_content"`
	} `json:"document"`
	Status string `json:"status"`
	Errors []struct {
		Message string `json:"error_message"`
	} `json:"errors"`
}

func (c *HTTPConverter) Convert(ctx context.Context, filePath string) (*StructuredDocument, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := c.BaseURL + "/v1alpha/convert/file"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conversion error: status %d, body: %s", resp.StatusCode, string(respBytes))
	}

	var convRes convertResponse
	if err := json.Unmarshal(respBytes, &convRes); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if convRes.Status == "failure" {
		msg := "unknown"
		if len(convRes.Errors) > 0 {
			msg = convRes.Errors[0].Message
		}
		return nil, fmt.Errorf("conversion failed: %s", msg)
	}

	return NewStructuredDocument(convRes.Document.MdContent, convRes.Document.TextContent), nil
}
