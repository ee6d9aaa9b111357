// Package utils exposes reusable helpers consumed by the CLI and the invocation layer.
//
// It houses ConfigurationLoader and LoggerFactory, which integrate Viper, environment variables
// and zap logging, along with the FlushingWriter used for streamed output and Preview for log
// fields.
package utils
