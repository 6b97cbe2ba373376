package http

import (
	"context"
	"io"

	"bodylab/pkg/contracts/domain"
)

// RequestBodyDecoder is the part of requestbody.Decoder the handlers use
type RequestBodyDecoder interface {
	DecodeReader(ctx context.Context, r io.Reader) (domain.HelloData, error)
	DecodeString(ctx context.Context, body string) (domain.HelloData, error)
	Observe(ctx context.Context, rec domain.HelloData)
}
