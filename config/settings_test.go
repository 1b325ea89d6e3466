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

package config_test

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/slamd/config"
)

var _ = Describe("Load", func() {
	var path string

	BeforeEach(func() {
		f, err := os.CreateTemp("", "slamd-settings-*.yaml")
		Expect(err).NotTo(HaveOccurred())
		defer f.Close() //nolint:errcheck

		_, err = f.WriteString("persistenceDirectory: ~/slamd-stats\nclassPath: /srv/classes\n")
		Expect(err).NotTo(HaveOccurred())
		path = f.Name()
	})

	AfterEach(func() {
		Expect(os.Remove(path)).To(Succeed())
	})

	It("expands a ~-relative persistenceDirectory against the home directory", func() {
		home, err := homedir.Dir()
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.PersistenceDirectory).To(Equal(filepath.Join(home, "slamd-stats")))
	})

	It("leaves an absolute classPath untouched", func() {
		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.ClassPath).To(Equal("/srv/classes"))
	})
})
