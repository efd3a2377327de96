package api

import (
	"sync"
	"time"

	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/spf13/viper"
)

type Config struct {
	StorageConfig
	ServerConfig
	BadgeConfig
}

type StorageConfig struct {
	TableNameContests string
	TableNameStories  string
	TableNameUsers    string
}

type ServerConfig struct {
	Port int
}

type BadgeConfig struct {
	SweepFunctionName string
	LaunchDate        time.Time
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			TableNameContests: viper.GetString("storage.TableNameContests"),
			TableNameStories:  viper.GetString("storage.TableNameStories"),
			TableNameUsers:    viper.GetString("storage.TableNameUsers"),
		},
		ServerConfig: ServerConfig{
			Port: viper.GetInt("server.port"),
		},
		BadgeConfig: BadgeConfig{
			SweepFunctionName: viper.GetString("badges.SweepFunctionName"),
			LaunchDate:        readLaunchDate(),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func readLaunchDate() time.Time {
	raw := getStringOrDefault("badges.LaunchDate", "")
	if raw == "" {
		logging.Log.Warn("no launch date configured, founder window treated as closed")
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logging.Log.Fatalf("invalid badges.LaunchDate '%s': %v", raw, err)
	}
	return parsed
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
