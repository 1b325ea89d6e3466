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

// Package protocol implements the SLAMD client/server wire protocol: a
// length-implicit ASN.1 BER framing, one SEQUENCE per message, and the
// fifteen message variants exchanged between a client and its controller.
//
// Every message is a SEQUENCE of two children: the messageID (a universal
// INTEGER) and a context-tagged payload whose tag number selects the
// variant. Sub-fields inside a payload follow ordinary BER rules -
// integers as INTEGER, strings as OCTET STRING, booleans as BOOLEAN, lists
// as SEQUENCE OF, and job parameters as a SEQUENCE of {name, type,
// encoded-value} triples.
//
// BER encode/decode itself is delegated to github.com/go-asn1-ber/asn1-ber.
package protocol
