package bot

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/forumkit/aibot/internal/forum"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory forum.Store for tests.
type fakeStore struct {
	topics      map[int64]*forum.Topic
	posts       map[int64]*forum.Post
	starters    map[int64]*forum.Post
	replies     map[int64][]forum.Post // newest first
	searchHits  []forum.Post
	forumTitles map[int64]string
	structure   []forum.ForumInfo

	createdReplies []string
	searchQueries  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		topics:      make(map[int64]*forum.Topic),
		posts:       make(map[int64]*forum.Post),
		starters:    make(map[int64]*forum.Post),
		replies:     make(map[int64][]forum.Post),
		forumTitles: make(map[int64]string),
	}
}

func (s *fakeStore) Topic(topicID int64) (*forum.Topic, error) {
	if t, ok := s.topics[topicID]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("topic %d not found", topicID)
}

func (s *fakeStore) Post(postID int64) (*forum.Post, error) {
	if p, ok := s.posts[postID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("post %d not found", postID)
}

func (s *fakeStore) TopicStarter(topicID int64) (*forum.Post, error) {
	if p, ok := s.starters[topicID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no starter for topic %d", topicID)
}

func (s *fakeStore) TopicReplies(topicID int64, limit int, excludeIDs []int64) ([]forum.Post, error) {
	var out []forum.Post
	for _, p := range s.replies[topicID] {
		if slices.Contains(excludeIDs, p.ID) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) SearchPosts(query string, limit int, excludePostID, topicID int64) ([]forum.Post, error) {
	s.searchQueries = append(s.searchQueries, query)
	if len(s.searchHits) > limit {
		return s.searchHits[:limit], nil
	}
	return s.searchHits, nil
}

func (s *fakeStore) CreateReply(topicID, authorID int64, content string) (int64, error) {
	s.createdReplies = append(s.createdReplies, content)
	return int64(1000 + len(s.createdReplies)), nil
}

func (s *fakeStore) ForumTitle(forumID int64) (string, error) {
	if title, ok := s.forumTitles[forumID]; ok {
		return title, nil
	}
	return "", fmt.Errorf("forum %d not found", forumID)
}

func (s *fakeStore) ForumStructure() ([]forum.ForumInfo, error) {
	return s.structure, nil
}
