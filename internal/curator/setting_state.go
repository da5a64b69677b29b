package curator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/kangruixiang/curator/internal/pocketbase"
)

// Setting is one row of the settings collection.
type Setting struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Settings are the scoring and integration settings with their defaults applied.
type Settings struct {
	RatingWeight      float64 `json:"ratingWeight" yaml:"rating_weight"`
	RecencyWeight     float64 `json:"recencyWeight" yaml:"recency_weight"`
	WeightWeight      float64 `json:"weightWeight" yaml:"weight_weight"`
	RandomWeight      float64 `json:"randomWeight" yaml:"random_weight"`
	MaxDay            float64 `json:"maxDay" yaml:"max_day"`
	FullPenaltyWindow float64 `json:"fullPenaltyWindow" yaml:"full_penalty_window"`
	DecayWindow       float64 `json:"decayWindow" yaml:"decay_window"`
	DaysOld           float64 `json:"daysOld" yaml:"days_old"`
	ScoreRefreshHour  float64 `json:"scoreRefreshHour" yaml:"score_refresh_hour"`
	YoutubeAPIKey     string  `json:"youtubeAPIKey" yaml:"youtube_api_key"`
}

// DefaultSettings returns the value each setting is created with.
func DefaultSettings() Settings {
	return Settings{
		RatingWeight:      0.3,
		RecencyWeight:     0.3,
		WeightWeight:      0.3,
		RandomWeight:      0.3,
		MaxDay:            60,
		FullPenaltyWindow: 1,
		DecayWindow:       12,
		DaysOld:           0,
		ScoreRefreshHour:  6,
		YoutubeAPIKey:     "",
	}
}

// SettingState reads and writes settings by name.
type SettingState struct {
	client pocketbase.RecordClient
}

func NewSettingState(client pocketbase.RecordClient) *SettingState {
	return &SettingState{client: client}
}

// Get returns the setting called name. When it cannot be read, a setting
// with value def is created and returned instead.
func (s *SettingState) Get(ctx context.Context, name string, def any) (Setting, error) {
	var setting Setting
	err := s.client.GetFirstListItem(ctx, SettingsCollection, nameFilter(name), pocketbase.RecordOptions{}, &setting)
	if err == nil {
		return setting, nil
	}
	slog.Default().Info("setting not found, creating default",
		slog.String("name", name),
		slog.Any("default", def),
		slog.Any("error", err))

	if err := s.client.Create(ctx, SettingsCollection, map[string]any{
		"name":  name,
		"value": def,
	}, &setting); err != nil {
		return Setting{}, fmt.Errorf("client.Create(%s, %s) > %w", SettingsCollection, name, err)
	}
	return setting, nil
}

// Change sets the value of an existing setting, creating it if missing.
func (s *SettingState) Change(ctx context.Context, name string, value any) (Setting, error) {
	setting, err := s.Get(ctx, name, value)
	if err != nil {
		return Setting{}, err
	}
	var updated Setting
	if err := s.client.Update(ctx, SettingsCollection, setting.ID, map[string]any{
		"value": value,
	}, pocketbase.RecordOptions{}, &updated); err != nil {
		return Setting{}, fmt.Errorf("client.Update(%s, %s) > %w", SettingsCollection, name, err)
	}
	return updated, nil
}

// LoadDefaults reads every known setting, creating the missing ones with their defaults.
func (s *SettingState) LoadDefaults(ctx context.Context) (Settings, error) {
	defaults, err := DefaultValues()
	if err != nil {
		return Settings{}, err
	}
	values := make(map[string]any, len(defaults))
	for _, name := range slices.Sorted(maps.Keys(defaults)) {
		setting, err := s.Get(ctx, name, defaults[name])
		if err != nil {
			return Settings{}, err
		}
		values[name] = setting.Value
	}

	settings := DefaultSettings()
	data, err := json.Marshal(values)
	if err != nil {
		return Settings{}, fmt.Errorf("json.Marshal > %w", err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return settings, nil
}

// DefaultValues returns the default of every known setting keyed by its name.
func DefaultValues() (map[string]any, error) {
	return settingsMap(DefaultSettings())
}

func settingsMap(settings Settings) (map[string]any, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal > %w", err)
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return values, nil
}
