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

import "github.com/nabbar/slamd/errors"

// Body is implemented by every message payload. encode/decode live in
// codec.go, next to the ber.Packet plumbing they share.
type Body interface {
	Variant() Variant
}

// Message is the tagged union described in spec §3: a messageID shared
// between a request and its response, and exactly one Body.
type Message struct {
	ID   uint64
	Body Body
}

// Variant is a convenience accessor over Message.Body.Variant(), returning
// false for a zero-value Message.
func (m Message) Variant() (Variant, bool) {
	if m.Body == nil {
		return 0, false
	}
	return m.Body.Variant(), true
}

// ClientHello is sent once, first, by the client (spec §4.2 step 2).
type ClientHello struct {
	ClientID         string
	SoftwareVersion  string
	AuthType         string
	AuthID           string
	AuthCredentials  []byte
	RestrictedMode   bool
	SupportsTimeSync bool
}

func (ClientHello) Variant() Variant { return VariantClientHello }

// HelloResponse answers ClientHello.
type HelloResponse struct {
	ResponseCode     errors.CodeError
	Message          string
	ServerTime       int64 // milliseconds since epoch; <=0 means "not supplied"
	ProtocolMinor    int
	SupportsTimeSync bool
	RestrictedMode   bool
}

func (HelloResponse) Variant() Variant { return VariantHelloResponse }

// JobRequest asks the client to define (not yet start) a job (spec §3, §4.3).
type JobRequest struct {
	JobID               string
	JobClassName        string
	ThreadsPerClient    int
	ClientNumber        int
	ScheduledStartTime  int64 // ms epoch, server clock
	StopTime            int64 // ms epoch, server clock; 0 means unset
	Duration            int64 // seconds; <=0 means no limit
	CollectionInterval  int64 // seconds
	ThreadStartupDelay  int64 // ms
	Parameters          ParamList
}

func (JobRequest) Variant() Variant { return VariantJobRequest }

// JobResponse answers JobRequest.
type JobResponse struct {
	JobID        string
	ResponseCode errors.CodeError
	Message      string
}

func (JobResponse) Variant() Variant { return VariantJobResponse }

// JobControlRequest drives the job state machine (spec §4.3, §6).
type JobControlRequest struct {
	JobID string
	Op    JobControlOp
}

func (JobControlRequest) Variant() Variant { return VariantJobControlRequest }

// JobControlResponse answers JobControlRequest.
type JobControlResponse struct {
	JobID        string
	ResponseCode errors.CodeError
	Message      string
}

func (JobControlResponse) Variant() Variant { return VariantJobControlResponse }

// LogMessage is one entry of a Job's log list (spec §4.3).
type LogMessage struct {
	Timestamp int64 // ms epoch, client clock
	Level     string
	ClientID  string
	JobID     string
	ThreadID  string
	Text      string
}

// TrackerSample is the wire form of one StatTracker: a name and its
// per-interval values, plus the thread that produced it ("aggregated" for
// a collapsed tracker, per spec §4.3).
type TrackerSample struct {
	DisplayName     string
	ThreadID        string
	IntervalSeconds int64
	Values          []float64
}

// JobCompleted is sent by the client when a job's active-thread list
// empties (spec §4.3).
type JobCompleted struct {
	JobID           string
	State           JobState
	ActualStartTime int64 // ms epoch, server clock (adjusted)
	ActualStopTime  int64 // ms epoch, server clock (adjusted)
	DurationSeconds int64
	Trackers        []TrackerSample
	Logs            []LogMessage
}

func (JobCompleted) Variant() Variant { return VariantJobCompleted }

// StatusRequest asks for the client's current state, and optionally a
// specific job's state and trackers (spec §4.2).
type StatusRequest struct {
	JobID      string // empty means "client status only"
	SinceLogID int64  // cursor for incremental log retrieval
}

func (StatusRequest) Variant() Variant { return VariantStatusRequest }

// StatusResponse answers StatusRequest.
type StatusResponse struct {
	ClientState ClientState
	JobID       string
	JobState    JobState
	Trackers    []TrackerSample
	Logs        []LogMessage
}

func (StatusResponse) Variant() Variant { return VariantStatusResponse }

// ClassTransferRequest is the client's plugin-availability probe (spec §9
// redesign note: no bytecode crosses the wire, only the class's presence).
type ClassTransferRequest struct {
	ClassName string
}

func (ClassTransferRequest) Variant() Variant { return VariantClassTransferRequest }

// ClassTransferResponse answers ClassTransferRequest. ClassBytes is kept
// for wire compatibility per §9 but is unused by the plugin-catalog
// resolution path: a non-empty value is persisted under the classpath
// directory exactly as the source's dynamic-class-loading client would.
type ClassTransferResponse struct {
	ClassName  string
	Available  bool
	ClassBytes []byte
}

func (ClassTransferResponse) Variant() Variant { return VariantClassTransferResponse }

// KeepAlive is a no-op heartbeat in either direction.
type KeepAlive struct{}

func (KeepAlive) Variant() Variant { return VariantKeepAlive }

// ServerShutdown tells the client the server is going away (spec §4.2, §4.3).
type ServerShutdown struct {
	Reason string
}

func (ServerShutdown) Variant() Variant { return VariantServerShutdown }

// RegisterStatistic announces one live StatTracker to the real-time
// reporter's stat-port connection (spec §4.4).
type RegisterStatistic struct {
	JobID           string
	DisplayName     string
	ThreadID        string
	IntervalSeconds int64
}

func (RegisterStatistic) Variant() Variant { return VariantRegisterStatistic }

// ReportStatistic streams one interval's worth of samples for a previously
// registered tracker (spec §4.4).
type ReportStatistic struct {
	JobID       string
	DisplayName string
	ThreadID    string
	Values      []float64
}

func (ReportStatistic) Variant() Variant { return VariantReportStatistic }
