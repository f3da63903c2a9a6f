package checkout

// Step identifies a stage of the checkout wizard.
type Step int

// Wizard steps in order.
const (
	StepCart Step = iota + 1
	StepShipping
	StepPayment
	StepReview
)

// String returns the display name of the step.
func (s Step) String() string {
	switch s {
	case StepCart:
		return "cart"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// Session tracks one checkout attempt: the current wizard step plus the
// shipping and payment form data collected along the way. It lives in memory
// for the duration of the flow and is discarded afterwards.
type Session struct {
	step Step
}

// NewSession starts a session at the cart step.
func NewSession() *Session {
	return &Session{step: StepCart}
}

// Step returns the current step.
func (s *Session) Step() Step {
	return s.step
}

// Next advances one step, clamped at review.
func (s *Session) Next() {
	if s.step < StepReview {
		s.step++
	}
}

// Prev goes back one step, clamped at cart.
func (s *Session) Prev() {
	if s.step > StepCart {
		s.step--
	}
}
