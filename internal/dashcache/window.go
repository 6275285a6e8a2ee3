package dashcache

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// windowKeySuffix names the entry holding the last window the server announced.
const windowKeySuffix = ":cacheExpiration"

// ServerWindow asks the server for its cache expiration, in minutes, and
// remembers the answer next to the cached payload. When the server cannot be
// reached the remembered value is used, then fallback. Zero disables caching.
func ServerWindow(ctx context.Context, store Store, key string, fetch func(ctx context.Context) (int, error), fallback time.Duration, log *slog.Logger) time.Duration {
	const op = "dashcache.ServerWindow"

	windowKey := key + windowKeySuffix

	minutes, err := fetch(ctx)
	if err == nil && minutes >= 0 {
		if err := store.Set(ctx, windowKey, []byte(strconv.Itoa(minutes))); err != nil {
			log.Warn("cache window write failed", slog.String("op", op), slog.String("error", err.Error()))
		}
		return time.Duration(minutes) * time.Minute
	}

	if err != nil {
		log.Debug("server cache window unavailable", slog.String("op", op), slog.String("error", err.Error()))
	}

	raw, ok, getErr := store.Get(ctx, windowKey)
	if getErr == nil && ok {
		if remembered, convErr := strconv.Atoi(string(raw)); convErr == nil && remembered >= 0 {
			return time.Duration(remembered) * time.Minute
		}
	}

	return fallback
}
