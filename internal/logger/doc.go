// Package logger provides domain-scoped logging for units of work.
//
// Every record is attributed to a slash-separated domain such as
// "echo-server/client/#127.0.0.1:50312". The severity ceiling and output of a
// domain come from the configuration tree of a Root, resolved by longest
// prefix. The Handle in effect travels in a context.Context, so it follows a
// unit of work through nested calls, spawned goroutines and worker pool
// tasks that resume on another worker.
//
// # Basic Usage
//
//	tree, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	root := logger.NewRoot(tree, output.DefaultRegistry())
//	ctx := root.Context(context.Background())
//
//	err = logger.Branch(ctx, "echo-server", func(ctx context.Context) error {
//	    logger.Infof(ctx, "started server on %s", addr)
//	    return serve(ctx)
//	})
//
// # Lazy Messages
//
// Messages are produced by closures that are only called when the record
// passes the ceiling:
//
//	logger.Debug(ctx, func() string { return expensiveDump(state) })
//
// Fatal calls always build their message, write it unless the ceiling is
// None, and then panic with a *FatalError.
//
// # Fatal Errors
//
// A *FatalError ends the unit of work that raised it. Run marks the
// boundary of a unit of work and turns the panic into a returned error; any
// other panic passes through unchanged:
//
//	err := logger.Run(ctx, func(ctx context.Context) error {
//	    logger.Validate(ctx, n < limit, func() string { return "too many clients" })
//	    return nil
//	})
//	if logger.IsFatal(err) {
//	    os.Exit(1)
//	}
//
// # Scopes
//
// Using installs a handle for a block. Branch and Subprogram descend into a
// child domain of the current one. Because contexts are immutable the
// caller's handle is back in effect as soon as the block exits, whatever the
// exit path.
package logger
