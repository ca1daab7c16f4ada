//go:build !linux

package snapshot

import "log/slog"

func newProcfs(*slog.Logger) (Provider, error) {
	return nil, ErrUnsupported
}
