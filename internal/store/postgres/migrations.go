package postgres

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS users (
    display_name  TEXT PRIMARY KEY,
    secret_hash   TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
    is_online     BOOLEAN NOT NULL DEFAULT FALSE,
    is_muted      BOOLEAN NOT NULL DEFAULT FALSE,
    is_banned     BOOLEAN NOT NULL DEFAULT FALSE,
    allowed_names TEXT[] NOT NULL DEFAULT '{}',
    last_seen     TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rooms (
    id           UUID PRIMARY KEY,
    name         TEXT NOT NULL DEFAULT '',
    type         TEXT NOT NULL CHECK (type IN ('group', 'direct')),
    participants TEXT[] NOT NULL DEFAULT '{}',
    created_by   TEXT NOT NULL DEFAULT '',
    is_public    BOOLEAN NOT NULL DEFAULT FALSE,
    emoji        TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_rooms_participants ON rooms USING GIN (participants);

CREATE TABLE IF NOT EXISTS messages (
    id               UUID PRIMARY KEY,
    room_id          UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
    sender           TEXT NOT NULL,
    content          TEXT NOT NULL DEFAULT '',
    image            TEXT NOT NULL DEFAULT '',
    is_image         BOOLEAN NOT NULL DEFAULT FALSE,
    reply_to_id      TEXT,
    reply_to_sender  TEXT,
    reply_to_content TEXT,
    status           TEXT NOT NULL DEFAULT 'sent' CHECK (status IN ('sent', 'delivered', 'read')),
    edited           BOOLEAN NOT NULL DEFAULT FALSE,
    edited_at        TIMESTAMPTZ,
    is_sudo          BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages (room_id, created_at);

CREATE TABLE IF NOT EXISTS message_reactions (
    message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    emoji      TEXT NOT NULL,
    reactor    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (message_id, emoji, reactor)
);

CREATE TABLE IF NOT EXISTS announcements (
    id         UUID PRIMARY KEY,
    content    TEXT NOT NULL,
    link       TEXT NOT NULL DEFAULT '',
    link_text  TEXT NOT NULL DEFAULT '',
    font_size  INT NOT NULL DEFAULT 14,
    created_by TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS subteams (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    color       TEXT NOT NULL DEFAULT '',
    members     TEXT[] NOT NULL DEFAULT '{}',
    created_by  TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_subteams_members ON subteams USING GIN (members);

CREATE TABLE IF NOT EXISTS notifications (
    id           UUID PRIMARY KEY,
    type         TEXT NOT NULL,
    subteam_id   TEXT NOT NULL DEFAULT '',
    subteam_name TEXT NOT NULL DEFAULT '',
    from_user    TEXT NOT NULL,
    to_user      TEXT NOT NULL,
    read         BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_to_user ON notifications (to_user, read);

CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    doc_key    TEXT NOT NULL,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (collection, doc_key)
);
`

func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
