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

// ResponseCode is the wire response code carried by JobResponse and
// JobControlResponse (spec §6). It is declared as a liberr.CodeError so
// every internal error the runtime raises can carry the exact code its
// response should echo, with no separate translation table.
const (
	ResponseSuccess               errors.CodeError = iota + errors.MinPkgProtocol
	ResponseLocalError
	ResponseNoSuchJob
	ResponseJobAlreadyStarted
	ResponseJobRequestRefused
	ResponseJobCreationFailure
	ResponseClassNotFound
	ResponseClassNotValid
	ResponseUnsupportedControlType
	ResponseClientShutdown
)

var responseNames = map[errors.CodeError]string{
	ResponseSuccess:                "SUCCESS",
	ResponseLocalError:             "LOCAL_ERROR",
	ResponseNoSuchJob:              "NO_SUCH_JOB",
	ResponseJobAlreadyStarted:      "JOB_ALREADY_STARTED",
	ResponseJobRequestRefused:      "JOB_REQUEST_REFUSED",
	ResponseJobCreationFailure:     "JOB_CREATION_FAILURE",
	ResponseClassNotFound:          "CLASS_NOT_FOUND",
	ResponseClassNotValid:          "CLASS_NOT_VALID",
	ResponseUnsupportedControlType: "UNSUPPORTED_CONTROL_TYPE",
	ResponseClientShutdown:         "CLIENT_SHUTDOWN",
}

func init() {
	errors.RegisterIdFctMessage(ResponseSuccess, responseMessage)
}

func responseMessage(code errors.CodeError) string {
	if n, ok := responseNames[code]; ok {
		return n
	}
	return ""
}

// ResponseName returns the wire name of a response code, or "" if unknown.
func ResponseName(code errors.CodeError) string {
	return responseMessage(code)
}

// ClientState is the client's own lifecycle state (spec §3, §6).
type ClientState uint8

const (
	ClientNotConnected ClientState = iota
	ClientIdle
	ClientJobNotYetStarted
	ClientRunningJob
	ClientShuttingDown
)

var clientStateNames = map[ClientState]string{
	ClientNotConnected:     "NOT_CONNECTED",
	ClientIdle:             "IDLE",
	ClientJobNotYetStarted: "JOB_NOT_YET_STARTED",
	ClientRunningJob:       "RUNNING_JOB",
	ClientShuttingDown:     "SHUTTING_DOWN",
}

func (s ClientState) String() string {
	if n, ok := clientStateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// JobControlOp is the operation carried by a JobControlRequest (spec §6).
type JobControlOp uint8

const (
	JobControlStart JobControlOp = iota
	JobControlStop
	JobControlStopAndWait
	JobControlStopDueToShutdown
	// JobControlCancel is never sent over the wire: it's the local op a
	// session uses to stop its own active job on operator-initiated
	// disconnect, landing the job in JobStateCancelled rather than
	// JobStateStoppedByUser.
	JobControlCancel
)

var jobControlOpNames = map[JobControlOp]string{
	JobControlStart:             "START",
	JobControlStop:              "STOP",
	JobControlStopAndWait:       "STOP_AND_WAIT",
	JobControlStopDueToShutdown: "STOP_DUE_TO_SHUTDOWN",
	JobControlCancel:            "CANCEL",
}

func (o JobControlOp) String() string {
	if n, ok := jobControlOpNames[o]; ok {
		return n
	}
	return "UNKNOWN"
}

// JobState is the lifecycle state of a Job (spec §3, §4.3).
type JobState uint8

const (
	JobStateNotStarted JobState = iota
	JobStateRunning
	JobStateCompleted
	JobStateStoppedByUser
	JobStateStoppedByShutdown
	JobStateCancelled
	JobStateStoppedDueToError
)

var jobStateNames = map[JobState]string{
	JobStateNotStarted:        "not-started",
	JobStateRunning:           "running",
	JobStateCompleted:         "completed",
	JobStateStoppedByUser:     "stopped-by-user",
	JobStateStoppedByShutdown: "stopped-by-shutdown",
	JobStateCancelled:         "cancelled",
	JobStateStoppedDueToError: "stopped-due-to-error",
}

func (s JobState) String() string {
	if n, ok := jobStateNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsTerminal reports whether s is one of the terminal states enumerated in
// spec §4.3: {completed, stopped-by-user, stopped-by-shutdown, cancelled,
// stopped-due-to-error}.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateCompleted, JobStateStoppedByUser, JobStateStoppedByShutdown, JobStateCancelled, JobStateStoppedDueToError:
		return true
	default:
		return false
	}
}
