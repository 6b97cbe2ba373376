package requestbody

import (
	"context"
	"io"

	"bodylab/pkg/contracts/domain"
)

// Decoder runs Decode and reports each step to an Observer
type Decoder struct {
	observer Observer
}

// NewDecoder creates a decoder. A nil observer disables observation.
func NewDecoder(observer Observer) *Decoder {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Decoder{observer: observer}
}

// DecodeReader drains r and decodes the result
func (d *Decoder) DecodeReader(ctx context.Context, r io.Reader) (domain.HelloData, error) {
	raw, err := ReadBody(r)
	if err != nil {
		return domain.HelloData{}, err
	}
	return d.DecodeBytes(ctx, raw)
}

// DecodeString decodes a body already resolved to text
func (d *Decoder) DecodeString(ctx context.Context, body string) (domain.HelloData, error) {
	return d.DecodeBytes(ctx, []byte(body))
}

// DecodeBytes observes raw, decodes it and observes the record
func (d *Decoder) DecodeBytes(ctx context.Context, raw []byte) (domain.HelloData, error) {
	d.observer.ObserveBody(ctx, raw)

	rec, err := Decode(raw)
	if err != nil {
		return domain.HelloData{}, err
	}

	d.observer.ObserveRecord(ctx, rec)
	return rec, nil
}

// Observe reports a record bound by another decoder, such as render.Bind
func (d *Decoder) Observe(ctx context.Context, rec domain.HelloData) {
	d.observer.ObserveRecord(ctx, rec)
}
