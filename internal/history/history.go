// Package history keeps a best-effort log of chat turns in SQLite. The
// database is opened lazily and created on first use; if opening or writing
// fails, the recorder falls back to in-memory storage. It is diagnostics
// only: sessions are never reconstructed from it.
package history

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/a6arsh/Chatbot-yellow/internal/logger"
)

// Entry is one recorded turn.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder logs turns to SQLite when available. A nil Recorder is valid and
// records nothing.
type Recorder struct {
	path    string
	once    sync.Once
	db      *sql.DB
	initErr error

	mu  sync.Mutex
	mem []Entry // in-memory fallback
}

func NewRecorder(path string) *Recorder {
	if path == "" {
		path = "history.db"
	}
	return &Recorder{path: path}
}

func (r *Recorder) init() {
	db, err := sql.Open("sqlite", "file:"+r.path+"?_busy_timeout=10000")
	if err != nil {
		r.initErr = err
		logger.L.Warn("sqlite open failed; recording history in memory only", "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		role TEXT,
		content TEXT,
		created_at DATETIME
	);`); err != nil {
		r.initErr = err
		logger.L.Warn("sqlite table creation failed; recording history in memory only", "error", err)
		return
	}
	r.db = db
	logger.L.Info("history DB initialized", "path", r.path)
}

// Record logs one turn. Failures are logged and swallowed; recording must
// never affect the request.
func (r *Recorder) Record(sessionID, role, content string) {
	if r == nil {
		return
	}
	r.once.Do(r.init)

	entry := Entry{SessionID: sessionID, Role: role, Content: content, CreatedAt: time.Now()}
	if r.initErr == nil && r.db != nil {
		if _, err := r.db.Exec(
			`INSERT INTO turns (session_id, role, content, created_at) VALUES (?,?,?,?);`,
			entry.SessionID, entry.Role, entry.Content, entry.CreatedAt,
		); err != nil {
			logger.L.Error("failed to record turn in sqlite; keeping in memory", "error", err)
		}
	}

	r.mu.Lock()
	r.mem = append(r.mem, entry)
	r.mu.Unlock()
}

// List returns all recorded turns of a session in chronological order.
func (r *Recorder) List(sessionID string) []Entry {
	if r == nil {
		return nil
	}
	r.once.Do(r.init)

	if r.initErr == nil && r.db != nil {
		rows, err := r.db.Query(
			`SELECT id, session_id, role, content, created_at FROM turns WHERE session_id = ? ORDER BY id ASC;`,
			sessionID,
		)
		if err == nil {
			defer rows.Close()
			var out []Entry
			for rows.Next() {
				var e Entry
				if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Content, &e.CreatedAt); err == nil {
					out = append(out, e)
				}
			}
			return out
		}
		logger.L.Warn("sqlite history query failed; serving from memory", "error", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.mem {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}
