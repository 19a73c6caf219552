//go:build !linux && !darwin

package screen

import (
	"context"
	"fmt"
	"runtime"
)

type unsupportedProvider struct{}

func (unsupportedProvider) Displays(ctx context.Context) ([]Display, error) {
	return nil, fmt.Errorf("display detection is not supported on %s; configure displays explicitly", runtime.GOOS)
}

// NewProvider returns the platform display provider.
func NewProvider() (Provider, error) {
	return unsupportedProvider{}, nil
}
