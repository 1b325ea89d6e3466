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

import (
	"fmt"
	"strconv"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// ParamType discriminates the encoded value of a Parameter.
type ParamType uint8

const (
	ParamString ParamType = iota
	ParamInt
	ParamBool
	ParamFloat
)

// Parameter is one named, typed entry of a Job's ordered parameter list
// (spec §3). Order of appearance is preserved across encode/decode, since
// job classes may depend on positional semantics for repeated names.
type Parameter struct {
	Name  string
	Type  ParamType
	Value string
}

// NewStringParam builds a Parameter carrying a string value.
func NewStringParam(name, value string) Parameter {
	return Parameter{Name: name, Type: ParamString, Value: value}
}

// NewIntParam builds a Parameter carrying an integer value.
func NewIntParam(name string, value int64) Parameter {
	return Parameter{Name: name, Type: ParamInt, Value: strconv.FormatInt(value, 10)}
}

// NewBoolParam builds a Parameter carrying a boolean value.
func NewBoolParam(name string, value bool) Parameter {
	return Parameter{Name: name, Type: ParamBool, Value: strconv.FormatBool(value)}
}

// Int returns the parameter's value parsed as an integer.
func (p Parameter) Int() (int64, error) {
	return strconv.ParseInt(p.Value, 10, 64)
}

// Bool returns the parameter's value parsed as a boolean.
func (p Parameter) Bool() (bool, error) {
	return strconv.ParseBool(p.Value)
}

// Float returns the parameter's value parsed as a float64.
func (p Parameter) Float() (float64, error) {
	return strconv.ParseFloat(p.Value, 64)
}

// ParamList is an ordered set of Parameter values.
type ParamList []Parameter

// Get returns the first parameter with the given name.
func (l ParamList) Get(name string) (Parameter, bool) {
	for _, p := range l {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

func encodeParamList(l ParamList, description string) *ber.Packet {
	seq := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, description)
	for _, p := range l {
		item := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "parameter")
		item.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, p.Name, "name"))
		item.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(p.Type), "type"))
		item.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, p.Value, "value"))
		seq.AppendChild(item)
	}
	return seq
}

func decodeParamList(pkt *ber.Packet) (ParamList, error) {
	if pkt == nil {
		return nil, nil
	}
	out := make(ParamList, 0, len(pkt.Children))
	for i, item := range pkt.Children {
		if len(item.Children) != 3 {
			return nil, fmt.Errorf("protocol: malformed parameter entry #%d", i)
		}
		name, ok := item.Children[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("protocol: parameter #%d name is not a string", i)
		}
		typ, ok := item.Children[1].Value.(int64)
		if !ok {
			return nil, fmt.Errorf("protocol: parameter #%d type is not an integer", i)
		}
		val, ok := item.Children[2].Value.(string)
		if !ok {
			return nil, fmt.Errorf("protocol: parameter #%d value is not a string", i)
		}
		out = append(out, Parameter{Name: name, Type: ParamType(typ), Value: val})
	}
	return out, nil
}
