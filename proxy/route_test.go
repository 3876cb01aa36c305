package proxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoute(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	assert.Equal(t, GET, r.Method)
	assert.True(t, r.Regex.MatchString("/yolo"))
	assert.False(t, r.Regex.MatchString("/yolo/somethingelse"))
	assert.NotNil(t, r.Handler)
}

func TestNewRoute_Error(t *testing.T) {
	_, err := NewRoute(GET, "asom (unclosed", testHandler)
	assert.Error(t, err)
}

func TestRoute_Match(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	request := testRequest(GET, "/yolo")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)
	assert.Equal(t, []string{"/yolo"}, groups)
}

func TestRoute_wild(t *testing.T) {
	r, err := NewRoute(OPTIONS, ".*", testHandler)
	assert.NoError(t, err)

	request := testRequest(OPTIONS, "/yolo")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)
	assert.Equal(t, []string{"/yolo"}, groups)
}

func TestRoute_Match_trailingSlash(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	request := testRequest(GET, "/yolo/")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)
	assert.Equal(t, []string{"/yolo/"}, groups)
}

func TestRoute_Match_groups(t *testing.T) {
	r, err := NewRoute(GET, "/yolo/(?P<key>[^/]+)", testHandler)
	assert.NoError(t, err)

	request := testRequest(GET, "/yolo/the-id")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)
	assert.Equal(t, []string{"/yolo/the-id", "the-id"}, groups)
}

func TestRoute_Match_nope(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	request := testRequest(GET, "/something-else")
	matched, groups := r.IsMatch(request)

	assert.False(t, matched)
	assert.Nil(t, groups)
}

func TestRoute_Match_nopeMethod(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	request := testRequest(POST, "/yolo")
	matched, groups := r.IsMatch(request)

	assert.False(t, matched)
	assert.Nil(t, groups)
}

func TestRoute_Context(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	ctx := context.Background()
	request := testRequest(GET, "/yolo")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)

	rctx, err := r.Context(ctx, request, groups)

	assert.NoError(t, err)
	assert.Equal(t, ctx, rctx.Context)
	assert.Equal(t, request, rctx.Request)
	assert.Empty(t, rctx.Params)
}

func TestRoute_Context_wild(t *testing.T) {
	r, err := NewRoute(OPTIONS, ".*", testHandler)
	assert.NoError(t, err)

	ctx := context.Background()
	request := testRequest(OPTIONS, "/yolo")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)

	rctx, err := r.Context(ctx, request, groups)

	assert.NoError(t, err)
	assert.Equal(t, ctx, rctx.Context)
	assert.Equal(t, request, rctx.Request)
	assert.Empty(t, rctx.Params)
}

func TestRoute_Context_params_regex(t *testing.T) {
	r, err := NewRoute(GET, "/yolo/(?P<id>[0-9]+)", testHandler)
	assert.NoError(t, err)

	ctx := context.Background()
	request := testRequest(GET, "/yolo/4")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)

	rctx, err := r.Context(ctx, request, groups)

	expected := map[string]string{
		"id": "4",
	}

	assert.NoError(t, err)
	assert.Equal(t, ctx, rctx.Context)
	assert.Equal(t, request, rctx.Request)
	assert.Equal(t, expected, rctx.Params)
}

func TestRoute_Context_params_regex2(t *testing.T) {
	r, err := NewRoute(GET, "/yolo/(?P<id>[0-9]+)/fetch/(?P<state>[^/]+)", testHandler)
	assert.NoError(t, err)

	ctx := context.Background()
	request := testRequest(GET, "/yolo/4/fetch/ny")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)

	rctx, err := r.Context(ctx, request, groups)

	expected := map[string]string{
		"id":    "4",
		"state": "ny",
	}

	assert.NoError(t, err)
	assert.Equal(t, ctx, rctx.Context)
	assert.Equal(t, request, rctx.Request)
	assert.Equal(t, expected, rctx.Params)
}

func TestRoute_Match_stageStrippedPath(t *testing.T) {
	r, err := NewRoute(POST, "/forms", testHandler)
	assert.NoError(t, err)

	request := NormalizeEvent(loadEvent(t, "rest_post_forms.json"), testStages())
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)
	assert.Equal(t, []string{"/forms"}, groups)
}

func TestRoute_Match_singleSegmentParams(t *testing.T) {
	r, err := NewRoute(GET, "/forms/(?P<form_id>[^/]+)", testHandler)
	assert.NoError(t, err)

	cases := []struct {
		path    string
		matched bool
	}{
		{"/forms/abc", true},
		{"/forms/abc/", true},
		{"/forms", false},
		{"/forms/", false},
		{"/forms/abc/responses/def", false},
		{"/xforms/abc", false},
	}

	for _, c := range cases {
		matched, _ := r.IsMatch(testRequest(GET, c.path))
		assert.Equal(t, c.matched, matched, c.path)
	}
}

func TestRoute_Follow(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	ctx := context.Background()
	request := testRequest(GET, "/yolo")
	matched, groups := r.IsMatch(request)

	assert.True(t, matched)

	response, err := r.Follow(ctx, request, groups)

	assert.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
}

func TestRoute_Follow_error(t *testing.T) {
	r, err := NewRoute(GET, "/yolo", testHandler)
	assert.NoError(t, err)

	ctx := context.Background()
	request := testRequest(GET, "/yolo")

	_, err = r.Follow(ctx, request, []string{})
	assert.Error(t, err)
}
