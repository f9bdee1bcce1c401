// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - EncryptionKey: Secret the candidate encryption key is derived from (required)
  - HMACSecret: Vote signature secret (required)
  - VoterTokenSecret: Secret shared with the session service (required)
  - AdminKey: Key for audit and lifecycle endpoints (required)
  - SMTP: Optional mail relay for ballot confirmations

# CLI Flags

	-c                   YAML config file
	-p                   Server port
	-d                   Database URL
	-t                   Database type
	--encryption-key     Candidate encryption key
	--hmac-secret        Vote signature secret
	--voter-token-secret Voter token secret
	--admin-key          Admin key

# Precedence

CLI flags win over environment variables, which win over the YAML file:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	ENCRYPTION_KEY     → --encryption-key
	HMAC_SECRET        → --hmac-secret
	VOTER_TOKEN_SECRET → --voter-token-secret
	ADMIN_KEY          → --admin-key
	CONFIG_FILE        → -c

SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and SMTP_FROM are read
from the environment or the smtp section of the YAML file.

# Key Rotation

Changing ENCRYPTION_KEY or HMAC_SECRET makes previously stored ciphertexts
and signatures unverifiable. This is an accepted limitation.
*/
package cliparse
