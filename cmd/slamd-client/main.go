/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command slamd-client runs one client session against a SLAMD-compatible
// server: it connects, handshakes, and accepts jobs until shut down.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nabbar/slamd/cmd/status"
	"github.com/nabbar/slamd/config"
	"github.com/nabbar/slamd/job/builtin"
	"github.com/nabbar/slamd/job/plugin"
	"github.com/nabbar/slamd/logger"
	"github.com/nabbar/slamd/report"
	"github.com/nabbar/slamd/session"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "slamd-client",
		Short: "Run a SLAMD client session",
		RunE:  run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "slamd-client.yaml", "configuration file path")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	out := status.New(cfg.Verbose, cfg.Quiet)
	out.Banner("slamd-client", cfg.ServerAddress)

	catalog := plugin.NewCatalog()
	builtin.RegisterAll(catalog)
	out.Verbosef("registered %d builtin job classes", len(catalog.Names()))

	sess := session.New(session.Config{
		ClientID:            hostID(),
		SoftwareVersion:     "slamd-client",
		ServerAddress:       cfg.ServerAddress,
		ClientPort:          cfg.ClientPort,
		AuthType:            cfg.AuthType,
		AuthID:              cfg.AuthID,
		AuthCredentials:     []byte(cfg.AuthCredentials),
		RestrictedMode:      cfg.RestrictedMode,
		UseSSL:              cfg.UseSSL,
		BlindTrust:          cfg.BlindTrust,
		RootCAFile:          cfg.SSLTrustStore,
		Catalog:             catalog,
		AggregateThreadData: cfg.AggregateThreadData,
		ClassPathDir:        cfg.ClassPath,
		Log:                 logger.New(os.Stderr),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = sess.Connect(ctx); err != nil {
		return err
	}

	tick := sess.StartKeepAlive(ctx, 0)
	defer tick.Stop(context.Background()) //nolint:errcheck

	if cfg.EnableRealTimeStats {
		reporter, rerr := report.Dial(ctx, cfg.ServerAddress, cfg.StatPort)
		if rerr == nil {
			defer reporter.Stop(context.Background()) //nolint:errcheck
		}
	}

	return sess.Run(ctx)
}

// hostID identifies this client to the server. It prefers the machine's
// hostname; when that's unavailable it falls back to a random uuid so two
// clients started on the same hostless environment never collide.
func hostID() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return uuid.NewString()
	}
	return name
}
