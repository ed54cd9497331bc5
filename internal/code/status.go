package code

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is a Judge0 status id.
type Status int

const (
	StatusProcessing          Status = 2
	StatusAccepted            Status = 3
	StatusWrongAnswer         Status = 4
	StatusTimeLimitExceeded   Status = 5
	StatusCompilationError    Status = 6
	StatusMemoryLimitExceeded Status = 7
	StatusTimeLimitAlt        Status = 8
	StatusOutputLimitExceeded Status = 9
	StatusRuntimeSignal       Status = 10
	StatusRuntimeOther        Status = 11
	StatusExecutionTimedOut   Status = 12
)

// Labels shown to the user.
const (
	LabelRuntimeError        = "Runtime Error"
	LabelWrongAnswer         = "Wrong Answer"
	LabelTimeLimitExceeded   = "Time Limit Exceeded"
	LabelCompilationError    = "Compilation Error"
	LabelMemoryLimitExceeded = "Memory Limit Exceeded"
	LabelOutputLimitExceeded = "Output Limit Exceeded"
	LabelExecutionTimedOut   = "Execution Timed Out"
)

const (
	placeholderInQueue  = "In queue"
	placeholderNoOutput = "No output, please check your code and print something"
	placeholderUnknown  = "Something went wrong"
)

// Known reports whether s is one of the statuses Classify handles explicitly.
func (s Status) Known() bool {
	return s >= StatusProcessing && s <= StatusExecutionTimedOut
}

// Transient reports whether the judge has not finished with the submission yet.
func (s Status) Transient() bool {
	return s == StatusProcessing
}

func (s Status) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusAccepted:
		return "accepted"
	case StatusWrongAnswer:
		return "wrong_answer"
	case StatusTimeLimitExceeded, StatusTimeLimitAlt:
		return "time_limit_exceeded"
	case StatusCompilationError:
		return "compilation_error"
	case StatusMemoryLimitExceeded:
		return "memory_limit_exceeded"
	case StatusOutputLimitExceeded:
		return "output_limit_exceeded"
	case StatusRuntimeSignal, StatusRuntimeOther:
		return "runtime_error"
	case StatusExecutionTimedOut:
		return "execution_timed_out"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Classify maps a raw judge result to an Outcome. It is total: unknown status
// ids fall back to a generic runtime error.
func Classify(r RawResult) Outcome {
	out := Outcome{Time: "0", Memory: "0"}

	switch st := Status(r.StatusID); st {
	case StatusProcessing:
		out.ErrorLabel = LabelRuntimeError
		out.Output = orDefault(r.Description, placeholderInQueue)
	case StatusAccepted:
		out.Output = orDefault(r.Stdout, placeholderNoOutput)
		out.Time, out.Memory = timeAndMemory(r)
	case StatusWrongAnswer:
		out.ErrorLabel = LabelWrongAnswer
		out.Output = orDefault(r.Stdout, placeholderNoOutput)
	case StatusTimeLimitExceeded, StatusTimeLimitAlt:
		out.ErrorLabel = LabelTimeLimitExceeded
		out.Output = LabelTimeLimitExceeded
	case StatusCompilationError:
		out.ErrorLabel = LabelCompilationError
		out.Output = "Compilation Error: " + trimmedOrDefault(r.CompileOutput, LabelCompilationError)
	case StatusMemoryLimitExceeded:
		out.ErrorLabel = LabelMemoryLimitExceeded
		out.Output = LabelMemoryLimitExceeded
	case StatusOutputLimitExceeded:
		out.ErrorLabel = LabelOutputLimitExceeded
		out.Output = LabelOutputLimitExceeded
	case StatusRuntimeSignal:
		out.ErrorLabel = LabelRuntimeError
		out.Output = "Runtime Error: " + trimmedOrDefault(r.Stderr, LabelRuntimeError)
	case StatusRuntimeOther:
		out.ErrorLabel = LabelRuntimeError
		out.Output = trimmedOrDefault(r.Stderr, LabelRuntimeError)
	case StatusExecutionTimedOut:
		out.ErrorLabel = LabelExecutionTimedOut
		out.Output = LabelExecutionTimedOut
	default:
		out.ErrorLabel = LabelRuntimeError
		out.Output = trimmedOrDefault(r.Stderr, placeholderUnknown)
	}
	return out
}

// timeAndMemory formats the judge's cpu seconds and KB memory figures.
// Memory is reported in MB with two decimals.
func timeAndMemory(r RawResult) (string, string) {
	t := "0"
	if r.Time != nil && *r.Time != "" {
		t = *r.Time
	}
	var kb float64
	if r.Memory != nil {
		kb = *r.Memory
	}
	return t, strconv.FormatFloat(kb/1024, 'f', 2, 64)
}

func orDefault(p *string, def string) string {
	if s, ok := decodeField(p); ok {
		return s
	}
	return def
}

func trimmedOrDefault(p *string, def string) string {
	if s, ok := decodeField(p); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return def
}
