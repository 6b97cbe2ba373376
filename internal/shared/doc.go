// Package shared holds helpers used by more than one package of the service.
//
// The testutil subpackage captures slog output so tests can assert on what the
// request-body observers and middleware logged:
//
//	logger, logs := testutil.NewTestLogger(t)
//	obs := requestbody.NewLogObserver(logger, true, true)
//	...
//	testutil.AssertLogAttr(t, logs, "username", "hello")
//
// It must not import any domain package.
package shared
