package research

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// hookKeywords boost a post's score when present
var hookKeywords = []string{
	"how to", "why", "secret", "mistake", "never", "always",
	"save", "hack", "trick", "instead", "actually", "free",
}

// titlePrefix strips subreddit conventions such as "LPT:" or "TIL that"
var titlePrefix = regexp.MustCompile(`(?i)^\s*(lpt|til|psa|eli5)\b\s*(request)?\s*[:\-]?\s*(that\s+)?`)

// PostLister is the part of the Reddit API the suggester needs
type PostLister interface {
	HotPosts(ctx context.Context, subreddit string, opts *reddit.ListOptions) ([]*reddit.Post, *reddit.Response, error)
}

// Suggester turns hot Reddit posts into candidate video topics
type Suggester struct {
	posts PostLister
	now   func() time.Time
}

// New creates a Suggester over any PostLister
func New(posts PostLister) *Suggester {
	return &Suggester{posts: posts, now: time.Now}
}

// NewReadonly creates a Suggester backed by Reddit's unauthenticated API
func NewReadonly(userAgent string) (*Suggester, error) {
	opts := []reddit.Opt{reddit.WithHTTPClient(&http.Client{Timeout: 15 * time.Second})}
	if userAgent != "" {
		opts = append(opts, reddit.WithUserAgent(userAgent))
	}
	client, err := reddit.NewReadonlyClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return New(client.Subreddit), nil
}

type candidate struct {
	topic string
	score int
}

// Suggest returns up to limit de-duplicated topics ranked by score.
// A subreddit that fails is skipped; it is an error only when all fail.
func (s *Suggester) Suggest(ctx context.Context, subreddits []string, limit int) ([]string, error) {
	log.Println("[research] Fetching topic ideas from Reddit...")

	var candidates []candidate
	failures := 0
	for _, sub := range subreddits {
		posts, _, err := s.posts.HotPosts(ctx, sub, &reddit.ListOptions{Limit: 25})
		if err != nil {
			log.Printf("[research] Reddit r/%s error: %v", sub, err)
			failures++
			continue
		}
		for _, post := range posts {
			if post == nil || post.Stickied || post.NSFW {
				continue
			}
			topic := topicFromTitle(post.Title)
			if topic == "" {
				continue
			}
			candidates = append(candidates, candidate{topic: topic, score: s.scorePost(post)})
		}
		log.Printf("[research] Reddit r/%s: %d posts", sub, len(posts))
	}

	if len(subreddits) > 0 && failures == len(subreddits) {
		return nil, fmt.Errorf("no subreddit could be read")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	topics := lo.UniqBy(candidates, func(c candidate) string {
		return strings.ToLower(c.topic)
	})
	result := lo.Map(topics, func(c candidate, _ int) string { return c.topic })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	log.Printf("[research] ✅ %d topic(s) suggested", len(result))
	return result, nil
}

func (s *Suggester) scorePost(post *reddit.Post) int {
	score := post.Score

	titleLower := strings.ToLower(post.Title)
	for _, kw := range hookKeywords {
		if strings.Contains(titleLower, kw) {
			score += 50
		}
	}

	// Recency bonus: posted within the last day
	if post.Created != nil && s.now().Sub(post.Created.Time) < 24*time.Hour {
		score += 200
	}

	// Discussion bonus
	if post.NumberOfComments > 100 {
		score += 75
	}

	return score
}

// topicFromTitle turns a post title into a short topic line
func topicFromTitle(title string) string {
	t := titlePrefix.ReplaceAllString(strings.TrimSpace(title), "")
	t = strings.TrimRight(strings.TrimSpace(t), ".!")
	if t == "" {
		return ""
	}
	r := []rune(t)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
