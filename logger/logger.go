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

package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// logger wraps a logrus.Logger and adapts it to the Logger interface.
type logger struct {
	log *logrus.Logger
}

// New returns a Logger writing JSON-formatted entries to out (os.Stderr if
// out is nil).
func New(out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &logger{log: l}
}

func (l *logger) fields(data interface{}, args ...interface{}) logrus.Fields {
	f := logrus.Fields{}
	if err, ok := data.(error); ok && err != nil {
		f["error"] = err.Error()
	} else if data != nil {
		f["data"] = data
	}
	for i, a := range args {
		f[fmt.Sprintf("arg%d", i)] = a
	}
	return f
}

func (l *logger) Debug(message string, data interface{}, args ...interface{}) {
	l.log.WithFields(l.fields(data, args...)).Debug(message)
}

func (l *logger) Info(message string, data interface{}, args ...interface{}) {
	l.log.WithFields(l.fields(data, args...)).Info(message)
}

func (l *logger) Warning(message string, data interface{}, args ...interface{}) {
	l.log.WithFields(l.fields(data, args...)).Warning(message)
}

func (l *logger) Error(message string, data interface{}, args ...interface{}) {
	l.log.WithFields(l.fields(data, args...)).Error(message)
}

func (l *logger) Fatal(message string, data interface{}, args ...interface{}) {
	l.log.WithFields(l.fields(data, args...)).Fatal(message)
}

func (l *logger) Panic(message string, data interface{}, args ...interface{}) {
	l.log.WithFields(l.fields(data, args...)).Panic(message)
}
