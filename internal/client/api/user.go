package api

import (
	"context"
	"net/http"
)

func (c *HTTPClient) UserInfo(ctx context.Context) (*UserProfile, error) {
	var out *UserProfile
	if err := call(ctx, c, http.MethodGet, "api/v1/systemUser/getUserInfo", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrEmptyData
	}
	return out, nil
}

func (c *HTTPClient) Permissions(ctx context.Context) ([]Permission, error) {
	var out []Permission
	if err := call(ctx, c, http.MethodGet, "api/v1/systemUser/getPermissionList", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
