// Package sessionstore keeps gorilla sessions server-side in the database.
// The cookie carries only a signed session id; values live in a sys_session
// row with a fixed TTL.
package sessionstore

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/gommon/random"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopinventory/internal/domain"
)

type Store struct {
	db     *gorm.DB
	codecs []securecookie.Codec
	opts   *sessions.Options
	ttl    time.Duration
}

var _ sessions.Store = (*Store)(nil)

func New(db *gorm.DB, ttl time.Duration, keyPairs ...[]byte) *Store {
	return &Store{
		db:     db,
		codecs: securecookie.CodecsFromPairs(keyPairs...),
		opts: &sessions.Options{
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
		},
		ttl: ttl,
	}
}

func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns a session for the request cookie, or a fresh one when the
// cookie is missing, tampered with, or the server-side row has expired.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.opts
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	var row domain.SysSession
	err = s.db.Where("id = ? AND expires_at > ?", id, time.Now()).First(&row).Error
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, row.Data, &session.Values, s.codecs...); err != nil {
		return session, nil
	}
	session.ID = id
	session.IsNew = false
	return session, nil
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	// MaxAge < 0 means destroy: drop the row and expire the cookie.
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.db.Delete(&domain.SysSession{}, "id = ?", session.ID).Error; err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = random.String(48, random.Alphanumeric)
	}

	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.codecs...)
	if err != nil {
		return err
	}
	now := time.Now()
	row := domain.SysSession{
		ID:        session.ID,
		Data:      data,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Cleanup removes expired session rows.
func (s *Store) Cleanup() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&domain.SysSession{}).Error
}
