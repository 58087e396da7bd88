package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *HTTPClient) Teams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := call(ctx, c, http.MethodGet, "api/v1/sectCharacter/teams", nil, nil, &teams); err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []Team{}
	}
	return teams, nil
}

func (c *HTTPClient) SwitchTeam(ctx context.Context, sectID int64) error {
	var ignored any
	return call(ctx, c, http.MethodPost, "api/v1/sectCharacter/switchTeam/"+strconv.FormatInt(sectID, 10), nil, nil, &ignored)
}

func (c *HTTPClient) SetDefaultTeam(ctx context.Context, sectID int64) error {
	var ignored any
	return call(ctx, c, http.MethodPut, "api/v1/sectCharacter/setDefault/"+strconv.FormatInt(sectID, 10), nil, nil, &ignored)
}

// GlobalTasks lists tasks across every team. An empty status lists all.
func (c *HTTPClient) GlobalTasks(ctx context.Context, status string, page, size int) (*Page[GlobalTask], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("pageNum", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(size))

	var out Page[GlobalTask]
	if err := call(ctx, c, http.MethodGet, "api/task/my/global", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
