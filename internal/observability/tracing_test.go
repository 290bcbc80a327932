package observability

import (
	"context"
	"testing"

	"github.com/fathom0/fathom/internal/config"
	"github.com/fathom0/fathom/internal/log"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OtelConfig{Enabled: false}, log.NewNop())
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() returned nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestSetupUnreachableCollector(t *testing.T) {
	// Export failures are asynchronous; setup itself must succeed even when
	// nothing listens on the endpoint.
	cfg := config.OtelConfig{
		Enabled:     true,
		Endpoint:    "localhost:1", // nothing listens here
		ServiceName: "fathom-test",
		Environment: "test",
	}

	shutdown, err := Setup(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() returned nil shutdown")
	}
	_ = shutdown(context.Background())
}
