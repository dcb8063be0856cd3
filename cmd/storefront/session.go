package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/kernel"
)

// shop is one command's view of the application: the booted kernel plus a
// gateway bound to the restored session.
type shop struct {
	k  *kernel.Kernel
	gw *services.Gateway
}

// openShop boots the kernel and restores the saved session. Without a
// configured backend it returns errSetup.
func openShop(cmd *cobra.Command) (*shop, error) {
	ctx := ctxOf(cmd)
	k, err := kernel.Boot(ctx)
	if err != nil {
		return nil, err
	}
	if !k.Ready() {
		k.Close()
		return nil, errSetup
	}
	k.Auth.Restore(ctx)
	return &shop{k: k, gw: services.NewGateway(k.Stores, k.Auth.Identity())}, nil
}

func (s *shop) Close() { s.k.Close() }

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
