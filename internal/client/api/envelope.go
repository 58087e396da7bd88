package api

// Envelope is the uniform response wrapper of the backend.
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      *T     `json:"data"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

// Page is a paginated result set.
type Page[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Size    int   `json:"size"`
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
}

// captchaEnvelope is the anji-captcha wrapper.
type captchaEnvelope[T any] struct {
	RepCode string `json:"repCode"`
	RepMsg  string `json:"repMsg"`
	RepData *T     `json:"repData"`
}

const captchaOK = "0000"
