// Package logger wraps zap for the release tooling.
//
// A global sugared logger writes console-formatted entries to stdout. Commands
// put a named logger into the context (WithName, WithKV) and every service pulls
// it back out with FromContext, so a whole pipeline run shares one scope.
package logger
