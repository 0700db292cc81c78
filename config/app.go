package config

import "time"

type App struct {
	Port         string `env:"APP_PORT" default:"8080"`
	DatabasePath string `env:"DATABASE_PATH" default:"libms.db"`
	JWTSecret    string `env:"JWT_SECRET,required"`
	Env          string `env:"APP_ENV" default:"dev"`

	// PreorderCutoff ("15:30") is carried over from the legacy deployment
	// config. It is not applied yet; reservations expire after PreorderHold.
	PreorderCutoff string `env:"PREORDER_CUTOFF" default:"15:30"`
}

const (
	// LoanPeriodDays is the number of full days a book may be out before the
	// open transaction counts as overdue.
	LoanPeriodDays = 14

	// PreorderHold is how long a reservation holds a book before it lapses.
	PreorderHold = 8 * time.Hour

	// TokenTTLHours is the JWT lifetime.
	TokenTTLHours = 1
)
