// Package app wires the bodylab service together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Initialize logging from the loaded configuration
//	2. Initialize OpenTelemetry tracing and metrics
//	3. Create the request body decoder and its log observer
//	4. Set up HTTP handlers and middleware
//	5. Configure the HTTP server
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run blocks until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then shuts the server down within Server.ShutdownTimeout.
package app
