package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/cryptox"
)

// CaptchaService runs the captcha round trip without any UI: the caller
// supplies the solved coordinates.
type CaptchaService interface {
	Fetch(ctx context.Context, captchaType string) (*api.Captcha, error)
	// Verify submits points for ch and returns the captchaVerification
	// string that login expects.
	Verify(ctx context.Context, ch *api.Captcha, points []api.Point) (string, error)
}

type captchaService struct {
	client api.Client
}

func NewCaptchaService(client api.Client) CaptchaService {
	return &captchaService{client: client}
}

func (c *captchaService) Fetch(ctx context.Context, captchaType string) (*api.Captcha, error) {
	ch, err := c.client.GetCaptcha(ctx, captchaType)
	if err != nil {
		return nil, fmt.Errorf("get captcha error: %w", err)
	}
	return ch, nil
}

func (c *captchaService) Verify(ctx context.Context, ch *api.Captcha, points []api.Point) (string, error) {
	pointJSON, err := encodePoints(ch.Type, points)
	if err != nil {
		return "", err
	}

	encrypted, err := cryptox.EncryptECB(pointJSON, ch.SecretKey)
	if err != nil {
		return "", fmt.Errorf("encrypt points: %w", err)
	}
	if err := c.client.CheckCaptcha(ctx, ch.Type, ch.Token, encrypted); err != nil {
		return "", fmt.Errorf("check captcha error: %w", err)
	}

	verification, err := cryptox.EncryptECB(ch.Token+"---"+pointJSON, ch.SecretKey)
	if err != nil {
		return "", fmt.Errorf("encrypt verification: %w", err)
	}
	return verification, nil
}

// encodePoints renders a block puzzle answer as a single point and a
// click-word answer as a list.
func encodePoints(captchaType string, points []api.Point) (string, error) {
	var v any
	switch captchaType {
	case api.CaptchaBlockPuzzle:
		if len(points) != 1 {
			return "", fmt.Errorf("block puzzle takes one point, got %d", len(points))
		}
		v = points[0]
	case api.CaptchaClickWord:
		v = points
	default:
		return "", fmt.Errorf("unsupported captcha type %q", captchaType)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
