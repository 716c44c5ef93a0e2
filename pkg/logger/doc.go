// Package logger builds *slog.Logger values from functional options and
// provides attribute constructors with consistent keys.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler from the configured
// Format and wraps it in LogHandlerDecorator, which runs the registered
// ContextExtractor callbacks for every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "sessiond"),
//	    logger.WithFileOutput(logger.FileOutput{Filename: "/var/log/sessiond.log"}),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "session evicted",
//	    logger.SessionID(id),
//	    logger.Duration(idle),
//	)
//
// Error, Errors and SessionID return an empty slog.Attr for zero input, so
// they can be passed unconditionally.
package logger
