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

// Package status prints the three binaries' startup/verbose terminal output,
// honoring the verbose/quiet configuration keys every binary shares.
package status

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Printer gates terminal output by the verbose/quiet settings a binary was
// started with. A Printer is safe to use with either flag false, which is
// the default "normal" line-per-event mode.
type Printer struct {
	verbose bool
	quiet   bool
}

// New returns a Printer. quiet wins over verbose: a quiet run never prints.
func New(verbose, quiet bool) *Printer {
	return &Printer{verbose: verbose, quiet: quiet}
}

// Banner prints the one-line startup identification for name, in bold green,
// unless quiet is set.
func (p *Printer) Banner(name, serverAddress string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(os.Stdout, "%s", name) //nolint:errcheck
	fmt.Fprintf(os.Stdout, " connecting to %s\n", serverAddress)
}

// Verbosef prints a yellow diagnostic line when verbose is set; a no-op
// otherwise.
func (p *Printer) Verbosef(format string, args ...interface{}) {
	if !p.verbose || p.quiet {
		return
	}
	color.New(color.FgYellow).Fprintf(os.Stdout, format+"\n", args...) //nolint:errcheck
}
