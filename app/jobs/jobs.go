// Package jobs defines the background jobs dispatched by the store.
package jobs

import (
	"fmt"

	"github.com/vastrahub/vastra/pkg/mail"
	"github.com/vastrahub/vastra/pkg/queue"
)

// RegisterAll registers every job type with the queue. Call once at boot.
func RegisterAll() {
	queue.Register("*jobs.OrderConfirmationMailJob", func() queue.Job { return &OrderConfirmationMailJob{} })
	queue.Register("*jobs.PasswordResetMailJob", func() queue.Job { return &PasswordResetMailJob{} })
}

// OrderConfirmationMailJob emails the customer after checkout.
type OrderConfirmationMailJob struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	OrderID string  `json:"orderId"`
	Total   float64 `json:"total"`
}

func (j *OrderConfirmationMailJob) Handle() error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Thanks for shopping with Vastra! Your order <b>%s</b> for ₹%.2f has been received and is being prepared.</p>",
		j.Name, j.OrderID, j.Total)
	return mail.To(j.Email).
		Subject("Your Vastra order " + j.OrderID).
		Body(body).
		Send()
}

// PasswordResetMailJob emails a password reset link.
type PasswordResetMailJob struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

func (j *PasswordResetMailJob) Handle() error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Use this token to reset your password: <b>%s</b></p><p>It expires in 15 minutes. If you did not ask for a reset, ignore this email.</p>",
		j.Name, j.Token)
	return mail.To(j.Email).
		Subject("Reset your Vastra password").
		Body(body).
		Send()
}
