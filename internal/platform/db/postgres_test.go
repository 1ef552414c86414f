package db

import (
	"context"
	"testing"
)

func TestNewRejectsMalformedDSN(t *testing.T) {
	if _, err := New(context.Background(), "postgres://%zz", Options{}); err == nil {
		t.Fatalf("expected parse error")
	}
}
