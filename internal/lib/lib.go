// Package lib groups modules that do not fit strictly into other layers.
//
// It contains the background job service (Asynq or in-process), the Resend email client and
// small text helpers.
package lib
