package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	WSURL     string
	ServerID  string
	ActionURL string

	Nick      string
	Pass      string
	Avatar    string
	Status    string
	BotPrefix string

	Rooms        []string
	PrivateRooms []string
	Owners       []string
	Guide        string
	Git          string

	DisallowedRooms []string

	AllowMute       bool
	ModeratedRooms  []string
	ModWhitelist    []string
	Punishments     map[int]string
	ZeroTolerance   int
	AutocorrectFile string

	PermissionsFile string

	RedisURL    string
	DatabaseURL string

	LoginRetryMax int
}

func Load() (*AppConfig, error) {
	// Missing .env is fine; the environment may be set by the supervisor.
	_ = godotenv.Load()

	cfg := &AppConfig{
		WSURL:           "wss://sim3.psim.us/showdown/websocket",
		ServerID:        "showdown",
		BotPrefix:       ".",
		AllowMute:       true,
		DisallowedRooms: []string{"staff"},
		Punishments:     map[int]string{1: "warn", 2: "mute", 3: "hourmute", 4: "roomban"},
		ZeroTolerance:   2,
		PermissionsFile: "configs/permissions.yaml",
		LoginRetryMax:   3,
	}

	if v := strings.TrimSpace(os.Getenv("PS_WS_URL")); v != "" {
		cfg.WSURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PS_SERVER_ID")); v != "" {
		cfg.ServerID = v
	}
	cfg.ActionURL = fmt.Sprintf("https://play.pokemonshowdown.com/~~%s/action.php", cfg.ServerID)

	cfg.Nick = strings.TrimSpace(os.Getenv("BOT_NICK"))
	cfg.Pass = os.Getenv("BOT_PASS")
	cfg.Avatar = strings.TrimSpace(os.Getenv("BOT_AVATAR"))
	cfg.Status = strings.TrimSpace(os.Getenv("BOT_STATUS"))
	if v := strings.TrimSpace(os.Getenv("BOT_PREFIX")); v != "" {
		cfg.BotPrefix = v
	}

	cfg.Rooms = splitList(os.Getenv("BOT_ROOMS"))
	cfg.PrivateRooms = splitList(os.Getenv("BOT_PRIVATE_ROOMS"))
	cfg.Owners = splitList(os.Getenv("BOT_OWNERS"))
	cfg.Guide = strings.TrimSpace(os.Getenv("BOT_GUIDE"))
	cfg.Git = strings.TrimSpace(os.Getenv("BOT_GIT"))

	if v := splitList(os.Getenv("DISALLOWED_ROOMS")); len(v) > 0 {
		cfg.DisallowedRooms = v
	}

	if v := strings.TrimSpace(os.Getenv("ALLOW_MUTE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowMute = b
		}
	}
	cfg.ModeratedRooms = splitList(os.Getenv("MOD_ROOMS"))
	cfg.ModWhitelist = splitList(os.Getenv("MOD_WHITELIST"))
	if v := splitList(os.Getenv("MOD_PUNISHMENTS")); len(v) > 0 {
		punishments := make(map[int]string, len(v))
		for i, name := range v {
			punishments[i+1] = name
		}
		cfg.Punishments = punishments
	}
	if v := strings.TrimSpace(os.Getenv("MOD_ZERO_TOLERANCE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ZeroTolerance = n
		}
	}
	cfg.AutocorrectFile = strings.TrimSpace(os.Getenv("MOD_AUTOCORRECT_FILE"))

	if v := strings.TrimSpace(os.Getenv("PERMISSIONS_FILE")); v != "" {
		cfg.PermissionsFile = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("LOGIN_RETRY_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.LoginRetryMax = n
		}
	}

	if cfg.Nick == "" {
		return nil, errors.New("BOT_NICK is required")
	}
	if len(cfg.Rooms) == 0 {
		return nil, errors.New("BOT_ROOMS is required")
	}

	return cfg, nil
}

// MainRoom is the first configured room. PM-routed boxes render into it.
func (c *AppConfig) MainRoom() string {
	if len(c.Rooms) == 0 {
		return ""
	}
	return c.Rooms[0]
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
