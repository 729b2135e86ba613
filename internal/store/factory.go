package store

import "fmt"

// Container names shared by every backend.
const (
	GroupContainer    = "standup_groups"
	HistoryContainer  = "standup_history"
	SettingsContainer = "user_settings"
)

// Stores bundles one Storage per record type, all backed by the same backend.
type Stores struct {
	Groups   Storage[GroupRecord]
	History  Storage[HistoryRecord]
	Settings Storage[UserSettingsRecord]
}

// Open builds the Stores for the configured backend. Supported backends:
// memory, file, redis, postgres.
func Open(backend, databaseURL, redisURL, dataDir string) (*Stores, error) {
	switch backend {
	case "", "memory":
		return &Stores{
			Groups:   NewMemory[GroupRecord](),
			History:  NewMemory[HistoryRecord](),
			Settings: NewMemory[UserSettingsRecord](),
		}, nil

	case "file":
		groups, err := NewFile[GroupRecord](dataDir, GroupContainer)
		if err != nil {
			return nil, err
		}
		history, err := NewFile[HistoryRecord](dataDir, HistoryContainer)
		if err != nil {
			return nil, err
		}
		settings, err := NewFile[UserSettingsRecord](dataDir, SettingsContainer)
		if err != nil {
			return nil, err
		}
		return &Stores{Groups: groups, History: history, Settings: settings}, nil

	case "redis":
		rdb, err := InitRedis(redisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return &Stores{
			Groups:   NewRedis[GroupRecord](rdb, GroupContainer),
			History:  NewRedis[HistoryRecord](rdb, HistoryContainer),
			Settings: NewRedis[UserSettingsRecord](rdb, SettingsContainer),
		}, nil

	case "postgres":
		db, err := InitPostgres(databaseURL, GroupContainer, HistoryContainer, SettingsContainer)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return &Stores{
			Groups:   NewPostgres[GroupRecord](db, GroupContainer),
			History:  NewPostgres[HistoryRecord](db, HistoryContainer),
			Settings: NewPostgres[UserSettingsRecord](db, SettingsContainer),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
