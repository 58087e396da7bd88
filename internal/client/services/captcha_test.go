package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/clansession/internal/apitest"
	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptcha_BlockPuzzleRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	svc := NewCaptchaService(api.NewHTTPClient(srv.URL))

	ch, err := svc.Fetch(ctx, api.CaptchaBlockPuzzle)
	require.NoError(t, err)
	assert.Equal(t, api.CaptchaBlockPuzzle, ch.Type)

	verification, err := svc.Verify(ctx, ch, []api.Point{{X: apitest.CaptchaSlideX, Y: 5}})
	require.NoError(t, err)

	plain, err := cryptox.DecryptECB(verification, apitest.CaptchaKey)
	require.NoError(t, err)
	token, points, found := strings.Cut(plain, "---")
	require.True(t, found)
	assert.Equal(t, apitest.CaptchaToken, token)
	assert.JSONEq(t, `{"x":120,"y":5}`, points)
}

func TestCaptcha_ClickWord(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	svc := NewCaptchaService(api.NewHTTPClient(srv.URL))

	ch, err := svc.Fetch(ctx, api.CaptchaClickWord)
	require.NoError(t, err)
	assert.Len(t, ch.WordList, 3)

	_, err = svc.Verify(ctx, ch, []api.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}})
	require.NoError(t, err)
}

func TestCaptcha_WrongAnswer(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	svc := NewCaptchaService(api.NewHTTPClient(srv.URL))

	ch, err := svc.Fetch(ctx, api.CaptchaBlockPuzzle)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, ch, []api.Point{{X: 10, Y: 5}})
	var ce *api.CaptchaError
	require.ErrorAs(t, err, &ce)
}

func TestEncodePoints(t *testing.T) {
	_, err := encodePoints(api.CaptchaBlockPuzzle, nil)
	assert.Error(t, err)

	_, err = encodePoints("rotate", []api.Point{{}})
	assert.Error(t, err)

	s, err := encodePoints(api.CaptchaClickWord, []api.Point{{X: 1, Y: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":1,"y":2}]`, s)
}
