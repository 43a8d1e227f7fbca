// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	_ = cliparse.LoadDotEnv(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values come from three places, later ones winning: the defaults in the
Config struct tags, environment variables (optionally seeded from a .env
file) and command-line flags.

# Settings

	Flag              Env              Default
	-p                PORT             8080
	-s                STORE            file (file, sqlite, postgres, bolt)
	-data             DATA_DIR         ./data
	-d                DATABASE_URL     <DATA_DIR>/daily-pick.db or .bolt
	-tz               TIMEZONE         Local
	-storage-timeout  STORAGE_TIMEOUT  5s
	-write-timeout    WRITE_TIMEOUT    5s
	-static           STATIC_DIR       (disabled)
	-log-level        LOG_LEVEL        info
	-log-format       LOG_FORMAT       text on a terminal, json otherwise
	-origins          ALLOWED_ORIGINS  comma-separated cross-site frontends (none)

DATABASE_URL is required for postgres. TIMEZONE decides where one voting
day ends and the next begins.
*/
package cliparse
