package config

const (
	defaultConfigPath          = "~/.config/wardrobe/config.toml"
	projectConfigName          = "wardrobe.toml"
	defaultAPIBaseURL          = "http://localhost:8000/api"
	defaultMediaBaseURL        = "http://localhost:8000"
	defaultTimeoutSeconds      = 120
	defaultCitySearchLimit     = 10
	defaultLocationID          = "101020100"
	defaultLocationName        = "上海"
	defaultCameraDevice        = "/dev/video0"
	defaultFFmpegBinary        = "ffmpeg"
	defaultCameraWidth         = 1280
	defaultCameraHeight        = 720
	defaultJPEGQuality         = 90
	defaultSuccessHoldMS       = 500
	defaultLockPath            = "~/.local/state/wardrobe/upload.lock"
	defaultStreamCadenceMS     = 30
	defaultCityTTLSeconds      = 600
	defaultCacheMaxCost        = 1 << 20
	defaultJournalPath         = "~/.local/share/wardrobe/journal.db"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	envAPIBaseURL              = "WARDROBE_API_URL"
	envMediaBaseURL            = "WARDROBE_MEDIA_URL"
	nativeCommandOutputPattern = "{out}"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			APIBaseURL:          defaultAPIBaseURL,
			MediaBaseURL:        defaultMediaBaseURL,
			TimeoutSeconds:      defaultTimeoutSeconds,
			CitySearchLimit:     defaultCitySearchLimit,
			DefaultLocationID:   defaultLocationID,
			DefaultLocationName: defaultLocationName,
		},
		Camera: Camera{
			Device:       defaultCameraDevice,
			FFmpegBinary: defaultFFmpegBinary,
			Width:        defaultCameraWidth,
			Height:       defaultCameraHeight,
			JPEGQuality:  defaultJPEGQuality,
		},
		Upload: Upload{
			SuccessHoldMS: defaultSuccessHoldMS,
			LockPath:      defaultLockPath,
		},
		Stream: Stream{CadenceMS: defaultStreamCadenceMS},
		Cache: Cache{
			CityTTLSeconds: defaultCityTTLSeconds,
			MaxCost:        defaultCacheMaxCost,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
