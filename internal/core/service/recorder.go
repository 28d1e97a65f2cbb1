package service

import "github.com/servicehub/marketplace-client/internal/core/domain"

// Recorder receives session and navigation outcomes for metrics.
type Recorder interface {
	LoginAttempt(outcome string)
	Registration(role domain.Role, loggedIn bool)
	Bootstrap(outcome string)
	AuthRejected()
	GuardDecision(outcome domain.Outcome, rule int)
}

type nopRecorder struct{}

func (nopRecorder) LoginAttempt(string)               {}
func (nopRecorder) Registration(domain.Role, bool)    {}
func (nopRecorder) Bootstrap(string)                  {}
func (nopRecorder) AuthRejected()                     {}
func (nopRecorder) GuardDecision(domain.Outcome, int) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
