package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/linescout/linescout-backend/pkg/outbox/registry"
)

func TestShouldAck(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error acks", err: nil, want: true},
		{name: "non-retryable acks", err: registry.NewNonRetryableError(errors.New("bad payload")), want: true},
		{name: "wrapped non-retryable acks", err: fmt.Errorf("handle: %w", registry.NewNonRetryableError(errors.New("bad payload"))), want: true},
		{name: "transient error nacks", err: errors.New("db unavailable"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldAck(tc.err); got != tc.want {
				t.Fatalf("shouldAck(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
