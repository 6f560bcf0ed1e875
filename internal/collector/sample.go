package collector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spacesedan/tweetflow/internal/models"
)

// Tweet templates for the synthetic generator. The keyword is substituted
// into each one so generated content stays on topic.
var positiveTemplates = []string{
	"Great initiative by %s! This will really help the people of Meghalaya. #MeghalayaDevelopment",
	"Impressed with the recent policies from %s. Moving in the right direction! 👍",
	"Thank you %s for the excellent work on infrastructure development in Shillong",
	"%s is doing amazing work for tribal welfare. Keep it up! #TribalWelfare",
	"The new education policies by %s are really promising for our youth",
	"Kudos to %s for the transparent governance and development initiatives",
	"Happy to see %s focusing on sustainable development in the Northeast",
	"The healthcare improvements under %s are commendable #Healthcare",
	"Excellent work by %s on preserving our cultural heritage while promoting development",
	"The tourism initiatives by %s are bringing positive changes to Meghalaya",
}

var negativeTemplates = []string{
	"Disappointed with the recent decisions by %s. Expected better leadership",
	"%s needs to address the infrastructure issues more seriously",
	"The promises made by %s during elections are still unfulfilled",
	"Concerned about the environmental policies of %s. Need more action!",
	"%s should focus more on rural development rather than urban areas",
	"The corruption allegations against %s officials need proper investigation",
	"Traffic and road conditions in Shillong are getting worse under %s",
	"%s needs to do more for employment generation in the state",
	"The tribal land issues are not being handled properly by %s",
	"Disappointed with the slow progress of development projects under %s",
}

var neutralTemplates = []string{
	"%s announced new policies for the upcoming fiscal year",
	"Meeting scheduled between %s and central government officials",
	"%s to review the progress of ongoing development projects",
	"Budget allocation for various departments announced by %s",
	"%s officials to visit remote areas for assessment",
	"New appointments made in various departments under %s",
	"%s to participate in the Northeast Council meeting next week",
	"Statistical report on state development released by %s",
	"%s to hold public consultation on new infrastructure projects",
	"Administrative reforms being considered by %s for better governance",
}

var sampleUsernames = []string{
	"meghalaya_citizen", "shillong_resident", "northeast_observer", "tribal_voice",
	"development_watch", "meghalaya_news", "citizen_reporter", "local_activist",
	"youth_meghalaya", "concerned_citizen", "meghalaya_today", "northeast_times",
	"shillong_times", "meghalaya_mirror", "tribal_times", "hill_voice",
}

// Sentiment mix of generated tweets: 40% positive, 30% negative, 30% neutral.
const (
	positiveWeight = 0.4
	negativeWeight = 0.3
)

// SampleSource generates synthetic tweets. Output is a pure function of the
// seed and the search arguments, so repeating a run reproduces the same posts
// and de-duplication treats them as already seen.
type SampleSource struct {
	seed int64
}

func NewSampleSource(seed int64) *SampleSource {
	return &SampleSource{seed: seed}
}

func (s *SampleSource) Name() string { return models.SourceSample }

func (s *SampleSource) Search(_ context.Context, keyword string, limit int, window models.Window) ([]models.Post, error) {
	rng := rand.New(rand.NewSource(s.seed))
	runID := runFingerprint(s.seed, keyword, window)

	span := window.End.Sub(window.Start)
	if span < 0 {
		span = 0
	}

	posts := make([]models.Post, 0, limit)
	for i := 0; i < limit; i++ {
		content := pickTemplate(rng, keyword)
		username := sampleUsernames[rng.Intn(len(sampleUsernames))]

		offset := time.Duration(0)
		if span > 0 {
			offset = time.Duration(rng.Int63n(int64(span) + 1))
		}
		createdAt := window.End.Add(-offset).Truncate(time.Second)

		postID := fmt.Sprintf("sample_%d_%s", i, runID)
		posts = append(posts, models.Post{
			PostID:       postID,
			Content:      content,
			Username:     username,
			CreatedAt:    createdAt,
			Keyword:      keyword,
			URL:          fmt.Sprintf("https://twitter.com/sample/status/%d", i),
			RetweetCount: rng.Intn(51),
			LikeCount:    rng.Intn(201),
		})
	}

	slog.Info("[SampleSource] Generated synthetic tweets",
		slog.String("keyword", keyword),
		slog.Int("posts", len(posts)))
	return posts, nil
}

func pickTemplate(rng *rand.Rand, keyword string) string {
	roll := rng.Float64()

	var templates []string
	switch {
	case roll < positiveWeight:
		templates = positiveTemplates
	case roll < positiveWeight+negativeWeight:
		templates = negativeTemplates
	default:
		templates = neutralTemplates
	}
	return fmt.Sprintf(templates[rng.Intn(len(templates))], keyword)
}

// runFingerprint distinguishes post IDs of different runs so a new window or
// keyword never collides with previously stored synthetic IDs.
func runFingerprint(seed int64, keyword string, window models.Window) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s", seed, keyword,
		window.Start.UTC().Format(time.RFC3339), window.End.UTC().Format(time.RFC3339))
	return hex.EncodeToString(h.Sum(nil))[:8]
}
