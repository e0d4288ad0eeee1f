package mix

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Status is the status block carried in Nuance Mix response bodies.
type Status struct {
	Code    int
	Message string
	Details string
}

func statusOf(s *structpb.Struct) *Status {
	st := object(s, "status")
	if st == nil {
		return nil
	}
	return &Status{
		Code:    int(number(st, "code")),
		Message: text(st, "message"),
		Details: text(st, "details"),
	}
}

// Failed reports whether the status signals a client or server error.
func (s *Status) Failed() bool {
	return s != nil && s.Code >= 400
}

// Err returns an ErrRemoteStatus error for a failed status, nil otherwise.
func (s *Status) Err() error {
	if !s.Failed() {
		return nil
	}
	reason := s.Details
	if reason == "" {
		reason = s.Message
	}
	return fmt.Errorf("%w: %d %s", ErrRemoteStatus, s.Code, reason)
}
