package storage

// Times are stored as unix milliseconds.
const schema = `
-- 'sources' tracks where notes come from: a local directory or a git remote.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL CHECK (kind IN ('local', 'git')),
    path TEXT NOT NULL UNIQUE,
    last_scanned INTEGER
);

-- 'cards' holds one note and the full scheduling state of its card.
CREATE TABLE IF NOT EXISTS cards (
    hash TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    answer TEXT NOT NULL DEFAULT '',
    context TEXT NOT NULL DEFAULT '',
    path TEXT NOT NULL DEFAULT '',
    source_id INTEGER,

    due INTEGER NOT NULL,
    stability REAL NOT NULL DEFAULT 0,
    difficulty REAL NOT NULL DEFAULT 0,
    elapsed_days INTEGER NOT NULL DEFAULT 0,
    scheduled_days INTEGER NOT NULL DEFAULT 0,
    reps INTEGER NOT NULL DEFAULT 0,
    lapses INTEGER NOT NULL DEFAULT 0,
    state INTEGER NOT NULL DEFAULT 0, -- 0: New, 1: Learning, 2: Review, 3: Relearning
    previous_state INTEGER NOT NULL DEFAULT 0,
    last_review INTEGER NOT NULL,
    last_log TEXT, -- JSON of the most recent review log

    FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS cards_due ON cards(due);

`
