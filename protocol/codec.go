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
	"github.com/nabbar/slamd/errors"
)

func newBool(v bool, desc string) *ber.Packet {
	return ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, v, desc)
}

func newInt(v int64, desc string) *ber.Packet {
	return ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, v, desc)
}

func newStr(v string, desc string) *ber.Packet {
	return ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, v, desc)
}

func newSeq(desc string) *ber.Packet {
	return ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, desc)
}

func boolOf(p *ber.Packet) (bool, error) {
	v, ok := p.Value.(bool)
	if !ok {
		return false, fmt.Errorf("protocol: expected BOOLEAN, got %T", p.Value)
	}
	return v, nil
}

func intOf(p *ber.Packet) (int64, error) {
	switch v := p.Value.(type) {
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("protocol: expected INTEGER, got %T", p.Value)
	}
}

func strOf(p *ber.Packet) (string, error) {
	switch v := p.Value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("protocol: expected OCTET STRING, got %T", p.Value)
	}
}

func bytesOf(p *ber.Packet) []byte {
	switch v := p.Value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return p.Data.Bytes()
	}
}

func childStr(seq *ber.Packet, idx int) (string, error) {
	if idx >= len(seq.Children) {
		return "", fmt.Errorf("protocol: missing child #%d", idx)
	}
	return strOf(seq.Children[idx])
}

func childInt(seq *ber.Packet, idx int) (int64, error) {
	if idx >= len(seq.Children) {
		return 0, fmt.Errorf("protocol: missing child #%d", idx)
	}
	return intOf(seq.Children[idx])
}

func childBool(seq *ber.Packet, idx int) (bool, error) {
	if idx >= len(seq.Children) {
		return false, fmt.Errorf("protocol: missing child #%d", idx)
	}
	return boolOf(seq.Children[idx])
}

// Encode serializes a Message into a single BER SEQUENCE: {messageID,
// variant-tagged payload}. The returned packet is ready for ber.Packet.Bytes().
func Encode(m Message) (*ber.Packet, error) {
	if m.Body == nil {
		return nil, fmt.Errorf("protocol: cannot encode a message with a nil body")
	}

	variant := m.Body.Variant()
	if !variant.Valid() {
		return nil, fmt.Errorf("protocol: unknown variant %d", variant)
	}

	payload := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(variant), nil, variant.String())

	if err := encodeBody(payload, m.Body); err != nil {
		return nil, err
	}

	root := newSeq("message")
	root.AppendChild(newInt(int64(m.ID), "messageID"))
	root.AppendChild(payload)
	return root, nil
}

// Decode parses a single BER SEQUENCE produced by Encode back into a Message.
func Decode(pkt *ber.Packet) (Message, error) {
	if pkt == nil {
		return Message{}, fmt.Errorf("protocol: cannot decode a nil packet")
	}
	if len(pkt.Children) != 2 {
		return Message{}, fmt.Errorf("protocol: message envelope must have exactly 2 children, got %d", len(pkt.Children))
	}

	id, err := intOf(pkt.Children[0])
	if err != nil {
		return Message{}, fmt.Errorf("protocol: decoding messageID: %w", err)
	}

	payload := pkt.Children[1]
	variant := Variant(payload.Tag)
	if !variant.Valid() {
		return Message{}, fmt.Errorf("protocol: unknown variant tag %d", payload.Tag)
	}

	body, err := decodeBody(variant, payload)
	if err != nil {
		return Message{}, fmt.Errorf("protocol: decoding %s: %w", variant, err)
	}

	return Message{ID: uint64(id), Body: body}, nil
}

func encodeBody(seq *ber.Packet, b Body) error {
	switch v := b.(type) {
	case ClientHello:
		seq.AppendChild(newStr(v.ClientID, "clientID"))
		seq.AppendChild(newStr(v.SoftwareVersion, "softwareVersion"))
		seq.AppendChild(newStr(v.AuthType, "authType"))
		seq.AppendChild(newStr(v.AuthID, "authID"))
		seq.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(v.AuthCredentials), "authCredentials"))
		seq.AppendChild(newBool(v.RestrictedMode, "restrictedMode"))
		seq.AppendChild(newBool(v.SupportsTimeSync, "supportsTimeSync"))

	case HelloResponse:
		seq.AppendChild(newInt(int64(v.ResponseCode), "responseCode"))
		seq.AppendChild(newStr(v.Message, "message"))
		seq.AppendChild(newInt(v.ServerTime, "serverTime"))
		seq.AppendChild(newInt(int64(v.ProtocolMinor), "protocolMinor"))
		seq.AppendChild(newBool(v.SupportsTimeSync, "supportsTimeSync"))
		seq.AppendChild(newBool(v.RestrictedMode, "restrictedMode"))

	case JobRequest:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newStr(v.JobClassName, "jobClassName"))
		seq.AppendChild(newInt(int64(v.ThreadsPerClient), "threadsPerClient"))
		seq.AppendChild(newInt(int64(v.ClientNumber), "clientNumber"))
		seq.AppendChild(newInt(v.ScheduledStartTime, "scheduledStartTime"))
		seq.AppendChild(newInt(v.StopTime, "stopTime"))
		seq.AppendChild(newInt(v.Duration, "duration"))
		seq.AppendChild(newInt(v.CollectionInterval, "collectionInterval"))
		seq.AppendChild(newInt(v.ThreadStartupDelay, "threadStartupDelay"))
		seq.AppendChild(encodeParamList(v.Parameters, "parameters"))

	case JobResponse:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newInt(int64(v.ResponseCode), "responseCode"))
		seq.AppendChild(newStr(v.Message, "message"))

	case JobControlRequest:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newInt(int64(v.Op), "op"))

	case JobControlResponse:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newInt(int64(v.ResponseCode), "responseCode"))
		seq.AppendChild(newStr(v.Message, "message"))

	case JobCompleted:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newInt(int64(v.State), "state"))
		seq.AppendChild(newInt(v.ActualStartTime, "actualStartTime"))
		seq.AppendChild(newInt(v.ActualStopTime, "actualStopTime"))
		seq.AppendChild(newInt(v.DurationSeconds, "durationSeconds"))
		seq.AppendChild(encodeTrackers(v.Trackers))
		seq.AppendChild(encodeLogs(v.Logs))

	case StatusRequest:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newInt(v.SinceLogID, "sinceLogID"))

	case StatusResponse:
		seq.AppendChild(newInt(int64(v.ClientState), "clientState"))
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newInt(int64(v.JobState), "jobState"))
		seq.AppendChild(encodeTrackers(v.Trackers))
		seq.AppendChild(encodeLogs(v.Logs))

	case ClassTransferRequest:
		seq.AppendChild(newStr(v.ClassName, "className"))

	case ClassTransferResponse:
		seq.AppendChild(newStr(v.ClassName, "className"))
		seq.AppendChild(newBool(v.Available, "available"))
		seq.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(v.ClassBytes), "classBytes"))

	case KeepAlive:
		// no fields

	case ServerShutdown:
		seq.AppendChild(newStr(v.Reason, "reason"))

	case RegisterStatistic:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newStr(v.DisplayName, "displayName"))
		seq.AppendChild(newStr(v.ThreadID, "threadID"))
		seq.AppendChild(newInt(v.IntervalSeconds, "intervalSeconds"))

	case ReportStatistic:
		seq.AppendChild(newStr(v.JobID, "jobID"))
		seq.AppendChild(newStr(v.DisplayName, "displayName"))
		seq.AppendChild(newStr(v.ThreadID, "threadID"))
		seq.AppendChild(encodeFloats(v.Values, "values"))

	default:
		return fmt.Errorf("protocol: unhandled body type %T", b)
	}
	return nil
}

func decodeBody(variant Variant, seq *ber.Packet) (Body, error) {
	switch variant {
	case VariantClientHello:
		clientID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		softwareVersion, err := childStr(seq, 1)
		if err != nil {
			return nil, err
		}
		authType, err := childStr(seq, 2)
		if err != nil {
			return nil, err
		}
		authID, err := childStr(seq, 3)
		if err != nil {
			return nil, err
		}
		if len(seq.Children) < 7 {
			return nil, fmt.Errorf("protocol: ClientHello missing fields")
		}
		restricted, err := childBool(seq, 5)
		if err != nil {
			return nil, err
		}
		supportsSync, err := childBool(seq, 6)
		if err != nil {
			return nil, err
		}
		return ClientHello{
			ClientID:         clientID,
			SoftwareVersion:  softwareVersion,
			AuthType:         authType,
			AuthID:           authID,
			AuthCredentials:  bytesOf(seq.Children[4]),
			RestrictedMode:   restricted,
			SupportsTimeSync: supportsSync,
		}, nil

	case VariantHelloResponse:
		code, err := childInt(seq, 0)
		if err != nil {
			return nil, err
		}
		msg, err := childStr(seq, 1)
		if err != nil {
			return nil, err
		}
		serverTime, err := childInt(seq, 2)
		if err != nil {
			return nil, err
		}
		minor, err := childInt(seq, 3)
		if err != nil {
			return nil, err
		}
		supportsSync, err := childBool(seq, 4)
		if err != nil {
			return nil, err
		}
		restricted, err := childBool(seq, 5)
		if err != nil {
			return nil, err
		}
		return HelloResponse{
			ResponseCode:     errors.CodeError(code),
			Message:          msg,
			ServerTime:       serverTime,
			ProtocolMinor:    int(minor),
			SupportsTimeSync: supportsSync,
			RestrictedMode:   restricted,
		}, nil

	case VariantJobRequest:
		if len(seq.Children) < 10 {
			return nil, fmt.Errorf("protocol: JobRequest missing fields")
		}
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		className, err := childStr(seq, 1)
		if err != nil {
			return nil, err
		}
		threads, err := childInt(seq, 2)
		if err != nil {
			return nil, err
		}
		clientNum, err := childInt(seq, 3)
		if err != nil {
			return nil, err
		}
		startTime, err := childInt(seq, 4)
		if err != nil {
			return nil, err
		}
		stopTime, err := childInt(seq, 5)
		if err != nil {
			return nil, err
		}
		duration, err := childInt(seq, 6)
		if err != nil {
			return nil, err
		}
		collectionInterval, err := childInt(seq, 7)
		if err != nil {
			return nil, err
		}
		startupDelay, err := childInt(seq, 8)
		if err != nil {
			return nil, err
		}
		params, err := decodeParamList(seq.Children[9])
		if err != nil {
			return nil, err
		}
		return JobRequest{
			JobID:              jobID,
			JobClassName:       className,
			ThreadsPerClient:   int(threads),
			ClientNumber:       int(clientNum),
			ScheduledStartTime: startTime,
			StopTime:           stopTime,
			Duration:           duration,
			CollectionInterval: collectionInterval,
			ThreadStartupDelay: startupDelay,
			Parameters:         params,
		}, nil

	case VariantJobResponse:
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		code, err := childInt(seq, 1)
		if err != nil {
			return nil, err
		}
		msg, err := childStr(seq, 2)
		if err != nil {
			return nil, err
		}
		return JobResponse{JobID: jobID, ResponseCode: errors.CodeError(code), Message: msg}, nil

	case VariantJobControlRequest:
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		op, err := childInt(seq, 1)
		if err != nil {
			return nil, err
		}
		return JobControlRequest{JobID: jobID, Op: JobControlOp(op)}, nil

	case VariantJobControlResponse:
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		code, err := childInt(seq, 1)
		if err != nil {
			return nil, err
		}
		msg, err := childStr(seq, 2)
		if err != nil {
			return nil, err
		}
		return JobControlResponse{JobID: jobID, ResponseCode: errors.CodeError(code), Message: msg}, nil

	case VariantJobCompleted:
		if len(seq.Children) < 7 {
			return nil, fmt.Errorf("protocol: JobCompleted missing fields")
		}
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		state, err := childInt(seq, 1)
		if err != nil {
			return nil, err
		}
		startTime, err := childInt(seq, 2)
		if err != nil {
			return nil, err
		}
		stopTime, err := childInt(seq, 3)
		if err != nil {
			return nil, err
		}
		dur, err := childInt(seq, 4)
		if err != nil {
			return nil, err
		}
		trackers, err := decodeTrackers(seq.Children[5])
		if err != nil {
			return nil, err
		}
		logs, err := decodeLogs(seq.Children[6])
		if err != nil {
			return nil, err
		}
		return JobCompleted{
			JobID:           jobID,
			State:           JobState(state),
			ActualStartTime: startTime,
			ActualStopTime:  stopTime,
			DurationSeconds: dur,
			Trackers:        trackers,
			Logs:            logs,
		}, nil

	case VariantStatusRequest:
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		since, err := childInt(seq, 1)
		if err != nil {
			return nil, err
		}
		return StatusRequest{JobID: jobID, SinceLogID: since}, nil

	case VariantStatusResponse:
		if len(seq.Children) < 5 {
			return nil, fmt.Errorf("protocol: StatusResponse missing fields")
		}
		state, err := childInt(seq, 0)
		if err != nil {
			return nil, err
		}
		jobID, err := childStr(seq, 1)
		if err != nil {
			return nil, err
		}
		jobState, err := childInt(seq, 2)
		if err != nil {
			return nil, err
		}
		trackers, err := decodeTrackers(seq.Children[3])
		if err != nil {
			return nil, err
		}
		logs, err := decodeLogs(seq.Children[4])
		if err != nil {
			return nil, err
		}
		return StatusResponse{
			ClientState: ClientState(state),
			JobID:       jobID,
			JobState:    JobState(jobState),
			Trackers:    trackers,
			Logs:        logs,
		}, nil

	case VariantClassTransferRequest:
		className, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		return ClassTransferRequest{ClassName: className}, nil

	case VariantClassTransferResponse:
		if len(seq.Children) < 3 {
			return nil, fmt.Errorf("protocol: ClassTransferResponse missing fields")
		}
		className, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		available, err := childBool(seq, 1)
		if err != nil {
			return nil, err
		}
		return ClassTransferResponse{
			ClassName:  className,
			Available:  available,
			ClassBytes: bytesOf(seq.Children[2]),
		}, nil

	case VariantKeepAlive:
		return KeepAlive{}, nil

	case VariantServerShutdown:
		reason, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		return ServerShutdown{Reason: reason}, nil

	case VariantRegisterStatistic:
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		displayName, err := childStr(seq, 1)
		if err != nil {
			return nil, err
		}
		threadID, err := childStr(seq, 2)
		if err != nil {
			return nil, err
		}
		interval, err := childInt(seq, 3)
		if err != nil {
			return nil, err
		}
		return RegisterStatistic{JobID: jobID, DisplayName: displayName, ThreadID: threadID, IntervalSeconds: interval}, nil

	case VariantReportStatistic:
		if len(seq.Children) < 4 {
			return nil, fmt.Errorf("protocol: ReportStatistic missing fields")
		}
		jobID, err := childStr(seq, 0)
		if err != nil {
			return nil, err
		}
		displayName, err := childStr(seq, 1)
		if err != nil {
			return nil, err
		}
		threadID, err := childStr(seq, 2)
		if err != nil {
			return nil, err
		}
		values, err := decodeFloats(seq.Children[3])
		if err != nil {
			return nil, err
		}
		return ReportStatistic{JobID: jobID, DisplayName: displayName, ThreadID: threadID, Values: values}, nil

	default:
		return nil, fmt.Errorf("protocol: unhandled variant %s", variant)
	}
}

func encodeTrackers(list []TrackerSample) *ber.Packet {
	seq := newSeq("trackers")
	for _, t := range list {
		item := newSeq("tracker")
		item.AppendChild(newStr(t.DisplayName, "displayName"))
		item.AppendChild(newStr(t.ThreadID, "threadID"))
		item.AppendChild(newInt(t.IntervalSeconds, "intervalSeconds"))
		item.AppendChild(encodeFloats(t.Values, "values"))
		seq.AppendChild(item)
	}
	return seq
}

func decodeTrackers(pkt *ber.Packet) ([]TrackerSample, error) {
	if pkt == nil {
		return nil, nil
	}
	out := make([]TrackerSample, 0, len(pkt.Children))
	for i, item := range pkt.Children {
		if len(item.Children) != 4 {
			return nil, fmt.Errorf("malformed tracker entry #%d", i)
		}
		name, err := strOf(item.Children[0])
		if err != nil {
			return nil, err
		}
		threadID, err := strOf(item.Children[1])
		if err != nil {
			return nil, err
		}
		interval, err := intOf(item.Children[2])
		if err != nil {
			return nil, err
		}
		values, err := decodeFloats(item.Children[3])
		if err != nil {
			return nil, err
		}
		out = append(out, TrackerSample{DisplayName: name, ThreadID: threadID, IntervalSeconds: interval, Values: values})
	}
	return out, nil
}

func encodeLogs(list []LogMessage) *ber.Packet {
	seq := newSeq("logs")
	for _, l := range list {
		item := newSeq("log")
		item.AppendChild(newInt(l.Timestamp, "timestamp"))
		item.AppendChild(newStr(l.Level, "level"))
		item.AppendChild(newStr(l.ClientID, "clientID"))
		item.AppendChild(newStr(l.JobID, "jobID"))
		item.AppendChild(newStr(l.ThreadID, "threadID"))
		item.AppendChild(newStr(l.Text, "text"))
		seq.AppendChild(item)
	}
	return seq
}

func decodeLogs(pkt *ber.Packet) ([]LogMessage, error) {
	if pkt == nil {
		return nil, nil
	}
	out := make([]LogMessage, 0, len(pkt.Children))
	for i, item := range pkt.Children {
		if len(item.Children) != 6 {
			return nil, fmt.Errorf("malformed log entry #%d", i)
		}
		ts, err := intOf(item.Children[0])
		if err != nil {
			return nil, err
		}
		level, err := strOf(item.Children[1])
		if err != nil {
			return nil, err
		}
		clientID, err := strOf(item.Children[2])
		if err != nil {
			return nil, err
		}
		jobID, err := strOf(item.Children[3])
		if err != nil {
			return nil, err
		}
		threadID, err := strOf(item.Children[4])
		if err != nil {
			return nil, err
		}
		text, err := strOf(item.Children[5])
		if err != nil {
			return nil, err
		}
		out = append(out, LogMessage{Timestamp: ts, Level: level, ClientID: clientID, JobID: jobID, ThreadID: threadID, Text: text})
	}
	return out, nil
}

// Floats ride as OCTET STRING rather than a native BER REAL: asn1-ber does
// not implement the REAL tag, and the decimal text form round-trips exactly
// through strconv, which is all the stat-collection consumers need.
func encodeFloats(values []float64, desc string) *ber.Packet {
	seq := newSeq(desc)
	for _, v := range values {
		seq.AppendChild(newStr(strconv.FormatFloat(v, 'g', -1, 64), "value"))
	}
	return seq
}

func decodeFloats(pkt *ber.Packet) ([]float64, error) {
	if pkt == nil {
		return nil, nil
	}
	out := make([]float64, 0, len(pkt.Children))
	for i, item := range pkt.Children {
		s, err := strOf(item)
		if err != nil {
			return nil, fmt.Errorf("malformed value entry #%d: %w", i, err)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed value entry #%d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
