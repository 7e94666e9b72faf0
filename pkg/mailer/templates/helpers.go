package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithAppName(name string) Option { return func(d *EmailData) { d.AppName = name } }

func WithTaskCount(n int64) Option { return func(d *EmailData) { d.TaskCount = n } }

func newData(typ, name, email string, opts ...Option) map[string]any {
	d := EmailData{Name: name, Email: email, Type: typ}
	for _, o := range opts {
		o(&d)
	}
	return ToMap(d)
}

// NewWelcomeData builds the payload for a freshly registered account.
func NewWelcomeData(name, email string, opts ...Option) map[string]any {
	return newData(Welcome, name, email, opts...)
}

// NewAccountDeletedData builds the payload sent after an admin removed an account.
func NewAccountDeletedData(name, email string, opts ...Option) map[string]any {
	return newData(AccountDeleted, name, email, opts...)
}
