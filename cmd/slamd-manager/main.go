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

// Command slamd-manager runs the client supervisor: it connects to a SLAMD
// server and spawns/reaps slamd-client processes on its direction, up to
// maxClients (a local cap that is not advertised to the server).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/slamd/cmd/status"
	"github.com/nabbar/slamd/config"
	"github.com/nabbar/slamd/logger"
	"github.com/nabbar/slamd/supervisor"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "slamd-manager",
		Short: "Run the SLAMD client supervisor",
		RunE:  run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "slamd-manager.yaml", "configuration file path")

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
	out.Banner("slamd-manager", cfg.ServerAddress)
	out.Verbosef("maxClients=%d autoCreateClients=%t", cfg.MaxClients, cfg.AutoCreateClients)

	sv := supervisor.New(supervisor.Config{
		ServerAddress:     cfg.ServerAddress,
		SupervisorPort:    3001,
		MaxClients:        cfg.MaxClients,
		AutoCreateClients: cfg.AutoCreateClients,
		StartCommand:      cfg.StartCommand,
		AutoReconnect:     time.Duration(cfg.AutoReconnect) * time.Second,
		Log:               logger.New(os.Stderr),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return sv.Run(ctx)
}
