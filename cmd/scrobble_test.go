package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"success", nil, false},
		{"network failure", errors.New("dial tcp: connection refused"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"service offline", &lastfm.Error{Code: lastfm.ErrCodeServiceOffline}, true},
		{"rate limited", fmt.Errorf("call: %w", &lastfm.Error{Code: lastfm.ErrCodeRateLimitExceeded}), true},
		{"bad session", &lastfm.Error{Code: lastfm.ErrCodeInvalidSessionKey}, false},
		{"invalid track", fmt.Errorf("scrobble 0: %w", lastfm.ErrInvalidArgument), false},
		{"not authenticated", lastfm.ErrNoSessionKey, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestReportIgnored(t *testing.T) {
	var out bytes.Buffer
	assert.False(t, reportIgnored(&out, lastfm.IgnoredMessage{}))
	assert.Empty(t, out.String())

	assert.True(t, reportIgnored(&out, lastfm.IgnoredMessage{Code: 1, Text: "Artist name failed filter"}))
	assert.True(t, reportIgnored(&out, lastfm.IgnoredMessage{Code: 3}))
	assert.Equal(t, "✗ Ignored by Last.fm: Artist name failed filter\n"+
		"✗ Ignored by Last.fm: code 3\n", out.String())
}
