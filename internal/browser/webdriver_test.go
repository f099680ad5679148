package browser

import (
	"errors"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tebeka/selenium"
)

func TestClassifyWebDriverError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such element", &selenium.Error{Err: "no such element", Message: "Unable to locate element"}, ErrElementNotFound},
		{"stale element", &selenium.Error{Err: "stale element reference"}, ErrElementNotFound},
		{"invalid session", &selenium.Error{Err: "invalid session id"}, ErrConnectionLost},
		{"chrome not reachable", &selenium.Error{Err: "unknown error", Message: "chrome not reachable"}, ErrConnectionLost},
		{"driver gone", &url.Error{Op: "Post", URL: "http://localhost:9515", Err: syscall.ECONNREFUSED}, ErrConnectionLost},
		{"plain disconnected", errors.New("disconnected: not connected to DevTools"), ErrConnectionLost},
		{"plain stale", errors.New("stale element reference: element is not attached"), ErrElementNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyWebDriverError(tt.err), tt.want)
		})
	}
}

func TestClassifyWebDriverError_Unclassified(t *testing.T) {
	err := &selenium.Error{Err: "javascript error", Message: "boom"}

	got := classifyWebDriverError(err)
	assert.False(t, errors.Is(got, ErrElementNotFound))
	assert.False(t, errors.Is(got, ErrConnectionLost))
	assert.Nil(t, classifyWebDriverError(nil))
}
