package main

import (
	"context"

	"github.com/joshua-takyi/eventhub/internal/app"
)

// Bootstrap already runs the probe and exits non-zero when it fails.
func main() {
	c := app.Bootstrap(context.Background(), "test-connection")
	c.Close()
}
