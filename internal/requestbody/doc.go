// Package requestbody decodes the JSON body shared by the request-body endpoints
// into a domain.HelloData record and produces the two response shapes they use.
//
// # Decoding
//
// Decode checks the body against a fixed schema of (key, JSON type, target field)
// entries rather than relying on reflection-driven binding:
//
//	rec, err := requestbody.Decode([]byte(`{"username":"hello","age":20}`))
//
// Unknown keys are dropped, so re-encoding a decoded record keeps only username
// and age.
//
// # Errors
//
// Every failure is a *DecodeError whose Kind is one of ErrMalformedBody,
// ErrSchemaMismatch or ErrIOFailure. Errors raised by streaming decoders
// (render.Bind, json.Decoder) are mapped into the same kinds by Classify.
//
// # Observation
//
// Logging of the raw body and the decoded fields is a side effect supplied by the
// caller through an Observer; the package holds no process-wide state.
package requestbody
