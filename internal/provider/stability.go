package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	apperrors "noctuai/internal/errors"
)

const stabilityEngineID = "stable-diffusion-xl-1024-v1-0"

// ImageGenerator turns a text prompt into PNG bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ImageEditor rewrites an uploaded image: background removal or erasing a
// named object. Both return the edited PNG bytes.
type ImageEditor interface {
	RemoveBackground(ctx context.Context, image []byte) ([]byte, error)
	EraseObject(ctx context.Context, image []byte, object string) ([]byte, error)
}

// StabilityClient calls the Stability AI generation and edit endpoints.
type StabilityClient struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

// NewStabilityClient creates a Stability image client.
func NewStabilityClient(host, apiKey string) *StabilityClient {
	return &StabilityClient{
		host:       host,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

type textToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    int          `json:"cfg_scale"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Steps       int          `json:"steps"`
	Samples     int          `json:"samples"`
}

type textPrompt struct {
	Text string `json:"text"`
}

type textToImageResponse struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
	Message string `json:"message"`
}

// GenerateImage runs one text-to-image generation and returns the decoded
// PNG of the first artifact.
func (c *StabilityClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	payload := textToImageRequest{
		TextPrompts: []textPrompt{{Text: prompt}},
		CfgScale:    7,
		Height:      1024,
		Width:       1024,
		Steps:       30,
		Samples:     1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal stability request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.host, stabilityEngineID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build stability request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperrors.ErrProviderFailure, err)
	}

	var parsed textToImageResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", apperrors.ErrProviderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Message != "" {
			msg = parsed.Message
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrProviderFailure, msg)
	}

	if len(parsed.Artifacts) == 0 {
		return nil, fmt.Errorf("%w: no artifacts returned", apperrors.ErrProviderFailure)
	}

	image, err := base64.StdEncoding.DecodeString(parsed.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode artifact: %v", apperrors.ErrProviderFailure, err)
	}
	return image, nil
}

// RemoveBackground sends the image to the remove-background edit endpoint.
func (c *StabilityClient) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	return c.edit(ctx, "/v2beta/stable-image/edit/remove-background", image, nil)
}

// EraseObject asks the erase edit endpoint to remove the named object.
func (c *StabilityClient) EraseObject(ctx context.Context, image []byte, object string) ([]byte, error) {
	return c.edit(ctx, "/v2beta/stable-image/edit/erase", image, map[string]string{"prompt": object})
}

// edit posts the image (plus optional form fields) to an edit endpoint and
// returns the edited image bytes.
func (c *StabilityClient) edit(ctx context.Context, path string, image []byte, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", "image.png")
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write multipart body: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write multipart field: %w", err)
		}
	}
	if err := writer.WriteField("output_format", "png"); err != nil {
		return nil, fmt.Errorf("write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build stability request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperrors.ErrProviderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		// Error bodies come back as JSON even when Accept is image/*.
		var parsed struct {
			Errors []string `json:"errors"`
		}
		msg := resp.Status
		if err := json.Unmarshal(data, &parsed); err == nil && len(parsed.Errors) > 0 {
			msg = parsed.Errors[0]
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrProviderFailure, msg)
	}

	return data, nil
}
