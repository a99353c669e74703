package forum

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the Store implementation over a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS forums (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT
	);
	CREATE TABLE IF NOT EXISTS topics (
		id INTEGER PRIMARY KEY,
		forum_id INTEGER NOT NULL REFERENCES forums(id),
		title TEXT NOT NULL,
		starter_id INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_id INTEGER NOT NULL REFERENCES topics(id),
		forum_id INTEGER NOT NULL,
		author_id INTEGER NOT NULL,
		author_slug TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		is_topic INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_posts_topic ON posts(topic_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Topic(topicID int64) (*Topic, error) {
	var t Topic
	err := s.db.QueryRow(
		`SELECT id, forum_id, title, starter_id FROM topics WHERE id = ?`, topicID,
	).Scan(&t.ID, &t.ForumID, &t.Title, &t.StarterID)
	if err != nil {
		return nil, fmt.Errorf("load topic %d: %w", topicID, err)
	}
	return &t, nil
}

func (s *SQLiteStore) Post(postID int64) (*Post, error) {
	var p Post
	err := s.db.QueryRow(
		`SELECT id, topic_id, forum_id, author_id, author_slug, content, created_at, is_topic
		 FROM posts WHERE id = ?`, postID,
	).Scan(&p.ID, &p.TopicID, &p.ForumID, &p.AuthorID, &p.AuthorSlug, &p.Content, &p.CreatedAt, &p.IsTopic)
	if err != nil {
		return nil, fmt.Errorf("load post %d: %w", postID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) TopicStarter(topicID int64) (*Post, error) {
	var p Post
	err := s.db.QueryRow(
		`SELECT id, topic_id, forum_id, author_id, author_slug, content, created_at, is_topic
		 FROM posts WHERE topic_id = ? AND is_topic = 1 ORDER BY created_at LIMIT 1`, topicID,
	).Scan(&p.ID, &p.TopicID, &p.ForumID, &p.AuthorID, &p.AuthorSlug, &p.Content, &p.CreatedAt, &p.IsTopic)
	if err != nil {
		return nil, fmt.Errorf("load topic starter for %d: %w", topicID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) TopicReplies(topicID int64, limit int, excludeIDs []int64) ([]Post, error) {
	query := `SELECT id, topic_id, forum_id, author_id, author_slug, content, created_at, is_topic
	          FROM posts WHERE topic_id = ? AND is_topic = 0`
	args := []any{topicID}

	if len(excludeIDs) > 0 {
		query += fmt.Sprintf(" AND id NOT IN (%s)", placeholders(len(excludeIDs)))
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	return s.queryPosts(query, args...)
}

func (s *SQLiteStore) SearchPosts(query string, limit int, excludePostID, topicID int64) ([]Post, error) {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return nil, nil
	}

	sqlQuery := `SELECT id, topic_id, forum_id, author_id, author_slug, content, created_at, is_topic
	             FROM posts WHERE (`
	var args []any
	for i, kw := range keywords {
		if i > 0 {
			sqlQuery += " OR "
		}
		sqlQuery += "LOWER(content) LIKE ?"
		args = append(args, "%"+kw+"%")
	}
	sqlQuery += ")"

	if excludePostID != 0 {
		sqlQuery += " AND id != ?"
		args = append(args, excludePostID)
	}
	if topicID != 0 {
		// Replies from the current thread are already in the conversation
		// context.
		sqlQuery += " AND NOT (topic_id = ? AND is_topic = 0)"
		args = append(args, topicID)
	}

	sqlQuery += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	return s.queryPosts(sqlQuery, args...)
}

func (s *SQLiteStore) CreateReply(topicID, authorID int64, content string) (int64, error) {
	topic, err := s.Topic(topicID)
	if err != nil {
		return 0, err
	}

	result, err := s.db.Exec(
		`INSERT INTO posts (topic_id, forum_id, author_id, author_slug, content, created_at, is_topic)
		 VALUES (?, ?, ?, COALESCE(
			(SELECT author_slug FROM posts WHERE author_id = ? LIMIT 1), 'bot'), ?, ?, 0)`,
		topicID, topic.ForumID, authorID, authorID, content, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert reply: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ForumTitle(forumID int64) (string, error) {
	var title string
	err := s.db.QueryRow(`SELECT title FROM forums WHERE id = ?`, forumID).Scan(&title)
	if err != nil {
		return "", fmt.Errorf("load forum %d: %w", forumID, err)
	}
	return title, nil
}

func (s *SQLiteStore) ForumStructure() ([]ForumInfo, error) {
	rows, err := s.db.Query(
		`SELECT f.id, f.title, COALESCE(f.description, ''),
		        (SELECT COUNT(*) FROM topics t WHERE t.forum_id = f.id)
		 FROM forums f ORDER BY f.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("load forum structure: %w", err)
	}
	defer rows.Close()

	var forums []ForumInfo
	for rows.Next() {
		var f ForumInfo
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.TopicCount); err != nil {
			return nil, err
		}
		forums = append(forums, f)
	}
	return forums, rows.Err()
}

func (s *SQLiteStore) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.TopicID, &p.ForumID, &p.AuthorID, &p.AuthorSlug, &p.Content, &p.CreatedAt, &p.IsTopic); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
