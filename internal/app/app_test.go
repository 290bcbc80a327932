package app

import (
	"context"
	"errors"
	"testing"

	"github.com/fathom0/fathom/internal/config"
	"github.com/fathom0/fathom/internal/log"
)

func TestSetupNilConfig(t *testing.T) {
	_, err := Setup(context.Background(), nil, log.NewNop())
	if !errors.Is(err, config.ErrConfigNil) {
		t.Errorf("Setup(nil) error = %v, want ErrConfigNil", err)
	}
}

func TestCloseOnEmptyApp(t *testing.T) {
	a := &App{}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Second close must be a no-op.
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
