package deps

import (
	"time"

	"github.com/MrSnakeDoc/checkin/internal/engine"
	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/store"
)

type Deps struct {
	Logger      logger.Logger
	Engine      *engine.Engine
	Backend     store.Backend     // KV store backing records and site flags
	Credentials map[string]string // site ID -> credential, loaded at startup
	StartTime   time.Time
	Version     string
	Commit      string
	BuildDate   string
	GoVersion   string
}
