package wizard

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"jobtailor/internal/shared/metrics"
	"jobtailor/internal/shared/telemetry"
)

// Price is the fixed price shown on the checkout modal.
const Price = "$5.00"

// PaymentDetails are the checkout form fields. Only presence is checked; no
// charge is made.
type PaymentDetails struct {
	CardholderName string `json:"cardholderName" validate:"required"`
	CardNumber     string `json:"cardNumber" validate:"required"`
	Expiry         string `json:"expiry" validate:"required"`
	CVC            string `json:"cvc" validate:"required"`
}

var validate = validator.New()

// Validate rejects missing or whitespace-only fields.
func (p PaymentDetails) Validate() error {
	trimmed := PaymentDetails{
		CardholderName: strings.TrimSpace(p.CardholderName),
		CardNumber:     strings.TrimSpace(p.CardNumber),
		Expiry:         strings.TrimSpace(p.Expiry),
		CVC:            strings.TrimSpace(p.CVC),
	}
	return validate.Struct(trimmed)
}

// OpenPayment shows the checkout modal on the analysis step.
func (c *Controller) OpenPayment() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != StepAnalysis {
		return invalidTransition("open payment", c.state.Step)
	}
	if c.state.busy() {
		return ErrBusy
	}
	if c.state.Editing {
		return precondition("finish editing first")
	}
	c.state.PaymentModalOpen = true
	return nil
}

// ClosePayment hides the checkout modal. Refused while a charge is processing.
func (c *Controller) ClosePayment() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.ProcessingPayment {
		return ErrBusy
	}
	c.state.PaymentModalOpen = false
	return nil
}

// SubmitPayment simulates the charge and then requests tailoring exactly
// once. The charge always succeeds; a second submit while the first is in
// flight gets ErrBusy.
func (c *Controller) SubmitPayment(ctx context.Context, details PaymentDetails) error {
	c.mu.Lock()
	if c.state.busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.state.PaymentModalOpen {
		c.mu.Unlock()
		return precondition("payment modal is not open")
	}
	if err := details.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.Resume.Empty() || c.state.Job.Blank() {
		c.mu.Unlock()
		return precondition("résumé and job description required")
	}
	c.state.ProcessingPayment = true
	c.mu.Unlock()

	c.deps.Sleep(c.deps.PaymentDelay)
	metrics.Payment()
	telemetry.Info("payment.simulated", map[string]any{"session_id": c.id, "delay_ms": c.deps.PaymentDelay.Milliseconds()})

	c.mu.Lock()
	c.state.ProcessingPayment = false
	c.state.PaymentModalOpen = false
	// Inputs are read after the delay, as they stand when tailoring starts.
	if c.state.Resume.Empty() || c.state.Job.Blank() {
		c.mu.Unlock()
		return precondition("résumé and job description required")
	}
	resumeText, jobText := c.state.Resume.Content, c.state.Job.Text
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	return c.tailor(ctx, resumeText, jobText)
}
