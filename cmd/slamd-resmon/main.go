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

// Command slamd-resmon runs the resource-monitor client: it samples fixed
// host-resource identifiers on the server's direction.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nabbar/slamd/cmd/status"
	"github.com/nabbar/slamd/config"
	"github.com/nabbar/slamd/logger"
	"github.com/nabbar/slamd/resmon"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "slamd-resmon",
		Short: "Run the SLAMD resource-monitor client",
		RunE:  run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "slamd-resmon.yaml", "configuration file path")

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

	name, _ := os.Hostname()

	out := status.New(cfg.Verbose, cfg.Quiet)
	out.Banner("slamd-resmon", cfg.ServerAddress)

	client := resmon.New(resmon.Config{
		ClientID:      name,
		ServerAddress: cfg.ServerAddress,
		ResmonPort:    3002,
		Log:           logger.New(os.Stderr),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	return client.Run(ctx)
}
