package dynamock

import (
	"github.com/nisimpson/dynapatch"
)

// RequestOption is a functional option for configuring requests during building.
type RequestOption func(*RequestBuilder)

// RequestBuilder provides request building through functional options only.
type RequestBuilder struct {
	filter dynapatch.Filter
	data   dynapatch.Fields
}

// NewRequest creates a new request builder with the given options applied.
func NewRequest(opts ...RequestOption) *RequestBuilder {
	builder := &RequestBuilder{
		filter: make(dynapatch.Filter),
		data:   make(dynapatch.Fields),
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder
}

// Build creates a dynapatch.Request from the builder configuration. The
// returned maps are copies, so the builder may be reused.
func (b *RequestBuilder) Build() dynapatch.Request {
	req := dynapatch.Request{
		Filter: make(dynapatch.Filter, len(b.filter)),
		Data:   make(dynapatch.Fields, len(b.data)),
	}
	for k, v := range b.filter {
		req.Filter[k] = v
	}
	for k, v := range b.data {
		req.Data[k] = v
	}
	return req
}

// Functional Options

// WithKey adds a filter entry identifying the record.
func WithKey(field, value string) RequestOption {
	return func(b *RequestBuilder) {
		b.filter[field] = value
	}
}

// WithID sets the "id" filter entry.
func WithID(id string) RequestOption {
	return WithKey("id", id)
}

// WithField sets a single field to update.
func WithField(field string, value any) RequestOption {
	return func(b *RequestBuilder) {
		b.data[field] = value
	}
}

// WithFields sets multiple fields to update.
func WithFields(fields dynapatch.Fields) RequestOption {
	return func(b *RequestBuilder) {
		for k, v := range fields {
			b.data[k] = v
		}
	}
}

// WithoutKey removes a filter entry.
func WithoutKey(field string) RequestOption {
	return func(b *RequestBuilder) {
		delete(b.filter, field)
	}
}
