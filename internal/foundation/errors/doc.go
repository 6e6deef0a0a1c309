// Package errors provides the classified error primitives shared by the docsite
// boundary, content provider and CLI.
//
// A ClassifiedError carries a category, a severity, a retry strategy and
// structured context. Adapters turn it into an HTTP response or a process
// exit code:
//
//	err := errors.ValidationError("invalid slug segment").
//		WithContext("segment", seg).
//		WithCause(cause).
//		Build()
//	adapter.WriteErrorResponse(w, r, err) // 400 {"error":"invalid slug segment","code":"validation",...}
package errors
