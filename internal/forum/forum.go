// Package forum is the content backend boundary: reading thread content and
// posting replies. The bot consumes it only to build conversation context;
// it knows nothing about the storage schema behind it.
package forum

import "time"

// Post is one forum post: either a topic starter or a reply.
type Post struct {
	ID         int64
	TopicID    int64
	ForumID    int64
	AuthorID   int64
	AuthorSlug string
	Content    string
	CreatedAt  time.Time
	IsTopic    bool
}

// Topic is a discussion thread.
type Topic struct {
	ID        int64
	ForumID   int64
	Title     string
	StarterID int64
}

// Store is the read/write surface over forum content.
type Store interface {
	// Topic returns thread metadata.
	Topic(topicID int64) (*Topic, error)

	// Post returns one post by id.
	Post(postID int64) (*Post, error)

	// TopicStarter returns the post that opened the thread.
	TopicStarter(topicID int64) (*Post, error)

	// TopicReplies returns the most recent replies of a thread, newest
	// first, skipping the given post ids.
	TopicReplies(topicID int64, limit int, excludeIDs []int64) ([]Post, error)

	// SearchPosts finds posts matching the keyword query. excludePostID
	// drops the triggering post; topicID drops replies of the current
	// thread so the model is not fed what it already sees.
	SearchPosts(query string, limit int, excludePostID, topicID int64) ([]Post, error)

	// CreateReply appends a reply to a thread and returns its id.
	CreateReply(topicID, authorID int64, content string) (int64, error)

	// ForumTitle returns the display title of a forum.
	ForumTitle(forumID int64) (string, error)

	// ForumStructure returns a compact description of the site's forums
	// for prompt context.
	ForumStructure() ([]ForumInfo, error)
}

// ForumInfo is one forum in the site structure summary.
type ForumInfo struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TopicCount  int    `json:"topic_count"`
}
