/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package lifecycle runs long-lived services until the process is signalled.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/printradar/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a component with a blocking Start and a Stop.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions configures RunServer.
type ServerOptions struct {
	Services        []Service
	ShutdownTimeout time.Duration
	Logger          logger.Logger
}

// RunServer starts every service and blocks until SIGINT/SIGTERM, parent
// cancellation, or the first service failure. Services are then stopped in
// reverse order. The first service error, if any, is returned.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(opts.Services))

	for i, svc := range opts.Services {
		go func() {
			if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("service %d: %w", i, err)
			}
		}()
	}

	var runErr error

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Service failed, shutting down")
	}

	stop()

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for i := len(opts.Services) - 1; i >= 0; i-- {
		if err := opts.Services[i].Stop(stopCtx); err != nil {
			log.Warn().Err(err).Int("service", i).Msg("Error stopping service")
		}
	}

	return runErr
}
