package auth

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// SessionCookieName names the browser session cookie.
const SessionCookieName = "foxxtalk_session"

// NewSessionManager creates an SCS session manager backed by the application DB.
// The driver parameter selects the appropriate store: "mysql", "postgres", or
// "sqlite3" (default).
func NewSessionManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	var st scs.Store
	switch driver {
	case "mysql":
		st = mysqlstore.New(db.DB)
	case "postgres":
		st = postgresstore.New(db.DB)
	default: // sqlite3
		st = sqlite3store.New(db.DB)
	}
	return newSessionManager(st, lifetime, secure)
}

// NewRedisSessionManager creates an SCS session manager whose sessions live
// in Redis, shared by every instance behind a load balancer.
func NewRedisSessionManager(client *redis.Client, prefix string, lifetime time.Duration, secure bool) *scs.SessionManager {
	return newSessionManager(NewRedisStore(client, prefix+"session:"), lifetime, secure)
}

func newSessionManager(st scs.Store, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = st
	sm.Lifetime = lifetime
	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}
