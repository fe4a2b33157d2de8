// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: PARENTS AND CHILDREN
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create parents and children tables
-- Version: 001

CREATE TABLE IF NOT EXISTS parents (
    id UUID PRIMARY KEY,
    external_id VARCHAR(100) NOT NULL UNIQUE,
    name VARCHAR(100) NOT NULL,
    pin_hash VARCHAR(100) NOT NULL,
    consent_given_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_parents_external_id ON parents(external_id);

CREATE TABLE IF NOT EXISTS children (
    id UUID PRIMARY KEY,
    parent_id UUID NOT NULL REFERENCES parents(id) ON DELETE CASCADE,
    name VARCHAR(50) NOT NULL,
    age INTEGER NOT NULL,
    avatar VARCHAR(20) NOT NULL DEFAULT 'AVATAR_1',
    total_xp INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_practice_at TIMESTAMP WITH TIME ZONE,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_child_status CHECK (status IN ('active', 'deleted')),
    CONSTRAINT valid_child_age CHECK (age >= 3 AND age <= 12),
    CONSTRAINT valid_child_xp CHECK (total_xp >= 0),
    CONSTRAINT valid_child_level CHECK (level >= 1)
);

CREATE INDEX IF NOT EXISTS idx_children_parent_id ON children(parent_id);
CREATE INDEX IF NOT EXISTS idx_children_parent_status ON children(parent_id, status);
`

const migration001Down = `
DROP TABLE IF EXISTS children;
DROP TABLE IF EXISTS parents;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: QURAN CONTENT
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create Quran content tables (surahs, verses, words)
-- Version: 002

CREATE TABLE IF NOT EXISTS surahs (
    number INTEGER PRIMARY KEY,
    name_arabic VARCHAR(100) NOT NULL,
    name_simple VARCHAR(100) NOT NULL,
    name_translated VARCHAR(100) NOT NULL,
    verse_count INTEGER NOT NULL,
    revelation_place VARCHAR(20) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_surah_number CHECK (number >= 1 AND number <= 114),
    CONSTRAINT valid_verse_count CHECK (verse_count >= 1)
);

CREATE TABLE IF NOT EXISTS verses (
    id INTEGER PRIMARY KEY,
    surah_number INTEGER NOT NULL REFERENCES surahs(number) ON DELETE CASCADE,
    verse_number INTEGER NOT NULL,
    text_uthmani TEXT NOT NULL,
    translation TEXT NOT NULL DEFAULT '',
    word_count INTEGER NOT NULL DEFAULT 0,

    UNIQUE(surah_number, verse_number)
);

CREATE INDEX IF NOT EXISTS idx_verses_surah ON verses(surah_number, verse_number);

CREATE TABLE IF NOT EXISTS words (
    id INTEGER PRIMARY KEY,
    verse_id INTEGER NOT NULL REFERENCES verses(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    text_uthmani TEXT NOT NULL,
    transliteration TEXT NOT NULL DEFAULT '',
    translation TEXT NOT NULL DEFAULT '',

    UNIQUE(verse_id, position)
);

CREATE INDEX IF NOT EXISTS idx_words_verse ON words(verse_id, position);
`

const migration002Down = `
DROP TABLE IF EXISTS words;
DROP TABLE IF EXISTS verses;
DROP TABLE IF EXISTS surahs;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: PROGRESS AND ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create attempts, mastery and achievement tables
-- Version: 003

CREATE TABLE IF NOT EXISTS attempts (
    id UUID PRIMARY KEY,
    child_id UUID NOT NULL REFERENCES children(id) ON DELETE CASCADE,
    word_id INTEGER NOT NULL,
    surah_number INTEGER NOT NULL DEFAULT 0,
    verse_number INTEGER NOT NULL DEFAULT 0,
    accuracy DECIMAL(5,4) NOT NULL,
    device_attempt_id VARCHAR(100) NOT NULL UNIQUE,
    session_id VARCHAR(100) NOT NULL DEFAULT '',
    xp_earned INTEGER NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL,
    attempted_at TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_accuracy CHECK (accuracy >= 0 AND accuracy <= 1),
    CONSTRAINT valid_attempt_status CHECK (status IN ('mastered', 'learning', 'struggling'))
);

CREATE INDEX IF NOT EXISTS idx_attempts_child_id ON attempts(child_id);
CREATE INDEX IF NOT EXISTS idx_attempts_child_attempted ON attempts(child_id, attempted_at DESC);
CREATE INDEX IF NOT EXISTS idx_attempts_device_id ON attempts(device_attempt_id);

CREATE TABLE IF NOT EXISTS mastery (
    child_id UUID NOT NULL REFERENCES children(id) ON DELETE CASCADE,
    word_id INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL,
    streak INTEGER NOT NULL DEFAULT 0,
    last_accuracy DECIMAL(5,4) NOT NULL,
    attempt_count INTEGER NOT NULL DEFAULT 0,
    first_mastered_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY(child_id, word_id),
    CONSTRAINT valid_mastery_status CHECK (status IN ('mastered', 'learning', 'struggling'))
);

CREATE INDEX IF NOT EXISTS idx_mastery_child_status ON mastery(child_id, status);

CREATE TABLE IF NOT EXISTS achievements (
    id UUID PRIMARY KEY,
    name VARCHAR(50) NOT NULL UNIQUE,
    title VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    badge VARCHAR(30) NOT NULL,
    xp_reward INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS child_achievements (
    child_id UUID NOT NULL REFERENCES children(id) ON DELETE CASCADE,
    achievement_id UUID NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY(child_id, achievement_id)
);

CREATE INDEX IF NOT EXISTS idx_child_achievements_child ON child_achievements(child_id);
`

const migration003Down = `
DROP TABLE IF EXISTS child_achievements;
DROP TABLE IF EXISTS achievements;
DROP TABLE IF EXISTS mastery;
DROP TABLE IF EXISTS attempts;
`
