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

package protocol

import "fmt"

// Variant discriminates the payload carried by a Message. It is encoded as
// the context-specific tag number of the message's second SEQUENCE child,
// and must stay inside the [0, 63] range the wire protocol reserves for
// application tags (see spec §6).
type Variant uint8

const (
	VariantClientHello Variant = iota
	VariantHelloResponse
	VariantJobRequest
	VariantJobResponse
	VariantJobControlRequest
	VariantJobControlResponse
	VariantJobCompleted
	VariantStatusRequest
	VariantStatusResponse
	VariantClassTransferRequest
	VariantClassTransferResponse
	VariantKeepAlive
	VariantServerShutdown
	VariantRegisterStatistic
	VariantReportStatistic
)

var variantNames = map[Variant]string{
	VariantClientHello:           "ClientHello",
	VariantHelloResponse:         "HelloResponse",
	VariantJobRequest:            "JobRequest",
	VariantJobResponse:           "JobResponse",
	VariantJobControlRequest:     "JobControlRequest",
	VariantJobControlResponse:    "JobControlResponse",
	VariantJobCompleted:          "JobCompleted",
	VariantStatusRequest:         "StatusRequest",
	VariantStatusResponse:        "StatusResponse",
	VariantClassTransferRequest:  "ClassTransferRequest",
	VariantClassTransferResponse: "ClassTransferResponse",
	VariantKeepAlive:             "KeepAlive",
	VariantServerShutdown:        "ServerShutdown",
	VariantRegisterStatistic:     "RegisterStatistic",
	VariantReportStatistic:       "ReportStatistic",
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	if n, ok := variantNames[v]; ok {
		return n
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// Valid reports whether v names a known message variant.
func (v Variant) Valid() bool {
	_, ok := variantNames[v]
	return ok
}

// IsServerOriginated reports whether, by convention (spec §3), a message ID
// carrying this variant is expected to be odd (server-originated) rather
// than even (client-originated). Response variants share the request's ID
// and are exempt from this check by the caller.
func (v Variant) IsServerOriginated() bool {
	switch v {
	case VariantJobRequest, VariantJobControlRequest, VariantStatusRequest,
		VariantClassTransferResponse, VariantKeepAlive, VariantServerShutdown:
		return true
	default:
		return false
	}
}
