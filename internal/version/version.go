// Package version хранит сведения о сборке OrderTracker.
package version

import log "github.com/sirupsen/logrus"

// Значения подставляются при сборке:
//
//	go build -ldflags "-X github.com/vladislavdragonenkov/ordertracker/internal/version.version=v1.2.0 \
//	  -X github.com/vladislavdragonenkov/ordertracker/internal/version.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion возвращает версию сборки; она же отдаётся в /healthz.
func GetVersion() string { return version }

// Fields возвращает сведения о сборке для стартовой записи лога.
func Fields() log.Fields {
	return log.Fields{
		"version": version,
		"commit":  commit,
		"built":   date,
	}
}
