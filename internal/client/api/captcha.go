package api

import "context"

func (c *HTTPClient) GetCaptcha(ctx context.Context, captchaType string) (*Captcha, error) {
	var out *Captcha
	if err := callCaptcha(ctx, c, "api/v1/captcha/get", captchaGetRequest{CaptchaType: captchaType}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrEmptyData
	}
	out.Type = captchaType
	return out, nil
}

// CheckCaptcha submits the encrypted point JSON for a challenge token.
func (c *HTTPClient) CheckCaptcha(ctx context.Context, captchaType, token, pointJSON string) error {
	var ignored any
	return callCaptcha(ctx, c, "api/v1/captcha/check", captchaCheckRequest{
		CaptchaType: captchaType,
		PointJSON:   pointJSON,
		Token:       token,
	}, &ignored)
}
