package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

var cfg *koanf.Koanf

const (
	CMD       = "cmd"
	LOG_LEVEL = "log.level"

	STORE_TOKEN    = "store.token"
	STORE_DATABASE = "store.database"

	FEED_BACKEND     = "feed.backend"
	FEED_CREDENTIALS = "feed.credentials"
	FEED_CALENDAR    = "feed.calendar"
	FEED_OWNER       = "feed.owner"

	ICS_URL  = "ics.url"
	ICS_USER = "ics.user"
	ICS_PASS = "ics.pass"

	NOTIFY_WEBHOOK = "notify.webhook"

	SYNC_INTERVAL = "sync.interval"
	STATE_FILE    = "state.file"
	WATCH_CRON    = "watch.cron"

	prefix = "TASKDIGEST_"
)

func Gist() *koanf.Koanf {
	if cfg == nil {
		ini()
	}
	return cfg
}

func Sprint() string {
	sb := strings.Builder{}
	sb.WriteString("cmd|required|-\n")
	sb.WriteString("log_level|optional|info\n")
	sb.WriteString("store_token|required|-\n")
	sb.WriteString("store_database|required|-\n")
	sb.WriteString("feed_backend|optional|google\n")
	sb.WriteString("feed_credentials|required for google|-\n")
	sb.WriteString("feed_calendar|required for google|-\n")
	sb.WriteString("feed_owner|optional|-\n")
	sb.WriteString("ics_url|required for ics|-\n")
	sb.WriteString("ics_user|optional|-\n")
	sb.WriteString("ics_pass|optional|-\n")
	sb.WriteString("notify_webhook|required|-\n")
	sb.WriteString("sync_interval|optional|30\n")
	sb.WriteString("state_file|optional|digest_state.json\n")
	sb.WriteString("watch_cron|optional|0 */5 * * * * *\n")
	return sb.String()
}

func ini() {
	cfg = koanf.New(".")
	cfg.Set(LOG_LEVEL, "info")
	cfg.Set(FEED_BACKEND, "google")
	cfg.Set(SYNC_INTERVAL, 30)
	cfg.Set(STATE_FILE, "digest_state.json")
	cfg.Set(WATCH_CRON, "0 */5 * * * * *")

	f := flag.NewFlagSet("config", flag.ContinueOnError)
	f.Usage = func() {
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	f.String(CMD, "", "application run mode")
	f.String(LOG_LEVEL, "info", "log level")
	f.String(STORE_TOKEN, "", "task database api token")
	f.String(STORE_DATABASE, "", "task database identifier")
	f.String(FEED_BACKEND, "google", "calendar feed backend (google, ics, noop)")
	f.String(FEED_CREDENTIALS, "", "service account credentials json")
	f.String(FEED_CALENDAR, "", "calendar identifier")
	f.String(FEED_OWNER, "", "calendar owner address for decline matching")
	f.String(ICS_URL, "", "ics export url")
	f.String(ICS_USER, "", "ics basic auth user")
	f.String(ICS_PASS, "", "ics basic auth password")
	f.String(NOTIFY_WEBHOOK, "", "chat webhook url")
	f.Int(SYNC_INTERVAL, 30, "calendar sync interval in minutes")
	f.String(STATE_FILE, "digest_state.json", "state file path")
	f.String(WATCH_CRON, "0 */5 * * * * *", "watch mode cron expression")
	f.Parse(os.Args[1:])

	// Environment first, flags override.
	if err := cfg.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, prefix)), "_", ".", -1)
	}), nil); err != nil {
		log.Panic().Err(err).Msg("error loading environment config")
	}
	if err := cfg.Load(posflag.Provider(f, ".", cfg), nil); err != nil {
		log.Panic().Err(err).Msg("error loading config")
	}
	lvl, err := zerolog.ParseLevel(cfg.String(LOG_LEVEL))
	if err != nil {
		log.Panic().Err(err).Msg("error parsing log level")
	}
	zerolog.SetGlobalLevel(lvl)

	printCfg()
}

func printCfg() {
	log.Debug().Msgf("cmd: %s", cfg.String(CMD))
	log.Debug().Msgf("log_level: %s", cfg.String(LOG_LEVEL))
	log.Debug().Msgf("store_database: %s", cfg.String(STORE_DATABASE))
	log.Debug().Msgf("feed_backend: %s", cfg.String(FEED_BACKEND))
	log.Debug().Msgf("feed_calendar: %s", cfg.String(FEED_CALENDAR))
	log.Debug().Msgf("feed_owner: %s", cfg.String(FEED_OWNER))
	log.Debug().Msgf("ics_url: %s", cfg.String(ICS_URL))
	log.Debug().Msgf("sync_interval: %d", cfg.Int(SYNC_INTERVAL))
	log.Debug().Msgf("state_file: %s", cfg.String(STATE_FILE))
	log.Debug().Msgf("watch_cron: %s", cfg.String(WATCH_CRON))
}
