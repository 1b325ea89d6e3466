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

package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/slamd/logger"
)

var _ = Describe("Logger", func() {
	It("writes the message and an error field as JSON", func() {
		buf := &bytes.Buffer{}
		log := logger.New(buf)

		log.Error("dial failed", errors.New("connection refused"))

		var entry map[string]interface{}
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
		Expect(entry["msg"]).To(Equal("dial failed"))
		Expect(entry["error"]).To(Equal("connection refused"))
		Expect(entry["level"]).To(Equal("error"))
	})

	It("carries extra args as indexed fields", func() {
		buf := &bytes.Buffer{}
		log := logger.New(buf)

		log.Warning("sample failed", nil, "cpu.percent")

		var entry map[string]interface{}
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
		Expect(entry["arg0"]).To(Equal("cpu.percent"))
		Expect(entry).NotTo(HaveKey("error"))
		Expect(entry).NotTo(HaveKey("data"))
	})
})
