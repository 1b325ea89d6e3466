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

package report_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/slamd/job"
	"github.com/nabbar/slamd/job/builtin"
	"github.com/nabbar/slamd/job/plugin"
	"github.com/nabbar/slamd/report"
)

var _ = Describe("Persister", func() {
	It("writes a named snapshot file on Stop", func() {
		dir, err := os.MkdirTemp("", "slamd-persist-*")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)

		cat := plugin.NewCatalog()
		builtin.RegisterAll(cat)
		j := job.New(job.Config{JobID: "persist-job", ClassName: "noop", ThreadsPerClient: 1}, cat, nil)
		Expect(j.Start(context.Background())).To(Succeed())
		defer j.Stop(0) //nolint:errcheck

		p := report.NewPersister(dir, j)
		Expect(p.Stop(context.Background())).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "persist-job.json"))
		Expect(err).ToNot(HaveOccurred())

		var snap map[string]interface{}
		Expect(json.Unmarshal(data, &snap)).To(Succeed())
		Expect(snap["jobId"]).To(Equal("persist-job"))
	})
})
