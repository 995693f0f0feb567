package session

import (
	"go.uber.org/zap"
)

// OpenDurable returns the durable store: redis when redisAddr is set,
// otherwise files under dir.
func OpenDurable(dir, redisAddr, redisPassword string, log *zap.Logger) Store {
	if log == nil {
		log = zap.NewNop()
	}
	if redisAddr != "" {
		log.Info("using redis session store", zap.String("addr", redisAddr))
		return NewRedisStore(redisAddr, redisPassword, DefaultNamespace)
	}
	log.Info("using file session store", zap.String("dir", dir))
	return NewFileStore(dir)
}
