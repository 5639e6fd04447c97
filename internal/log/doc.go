// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Scanned codes often carry secrets: authenticator provisioning URIs, Wi-Fi
// passwords, access tokens. The SecureHandler masks attribute values that
// look like such payloads, and values stored under sensitive keys, before
// they reach the underlying handler. Even in verbose mode these values are
// masked, so logs can be shared.
//
// # Usage
//
//	logger, closer, err := log.New(os.Stderr, log.Options{
//	    Verbose: true,
//	    File:    "/var/log/codescan.log", // rotated with lumberjack
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
//	logger.Debug("barcode decoded", "content", "WIFI:S:home;P:secret;;") // masked
package log
